// pkg/registry/schema.go
package registry

// ProviderRegistry describes every enrichment provider the planner exposes.
type ProviderRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Providers   []Provider `json:"providers"`
}

type Provider struct {
	ID              string                 `json:"id"`
	DisplayName     string                 `json:"displayName"`
	Description     string                 `json:"description"`
	MandatoryFields []string               `json:"mandatoryFields"`
	OutputSchema    map[string]interface{} `json:"outputSchema"`
}
