// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

//go:embed providers.json
var embeddedRegistry []byte

var (
	defaultOnce sync.Once
	defaultReg  *ProviderRegistry
	defaultErr  error
)

// LoadRegistry reads a registry file from disk.
func LoadRegistry(path string) (*ProviderRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes registry JSON.
func Parse(data []byte) (*ProviderRegistry, error) {
	var reg ProviderRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse provider registry: %w", err)
	}
	seen := make(map[string]bool, len(reg.Providers))
	for _, p := range reg.Providers {
		if p.ID == "" {
			return nil, fmt.Errorf("provider registry: entry without id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("provider registry: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return &reg, nil
}

// Default returns the registry compiled into the binary.
func Default() (*ProviderRegistry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(embeddedRegistry)
	})
	return defaultReg, defaultErr
}

// Lookup finds a provider entry by id.
func (r *ProviderRegistry) Lookup(id string) (*Provider, bool) {
	for i := range r.Providers {
		if r.Providers[i].ID == id {
			return &r.Providers[i], true
		}
	}
	return nil, false
}

// OutputSchema returns the embedded output schema for id, or nil when the
// provider has none.
func OutputSchema(id string) map[string]interface{} {
	reg, err := Default()
	if err != nil {
		return nil
	}
	if p, ok := reg.Lookup(id); ok {
		return p.OutputSchema
	}
	return nil
}
