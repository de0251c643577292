package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult is the outcome of checking a document against a JSON schema.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the individual errors into one line.
func (r *ValidationResult) Summary() string {
	if r == nil || r.Valid {
		return ""
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateDocument checks document against schema. Both may be Go values
// (maps, structs) or raw JSON bytes. An empty schema accepts everything.
func ValidateDocument(schema, document interface{}) (*ValidationResult, error) {
	if isEmptySchema(schema) {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(loaderFor(schema), loaderFor(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

func loaderFor(v interface{}) gojsonschema.JSONLoader {
	switch t := v.(type) {
	case []byte:
		return gojsonschema.NewBytesLoader(t)
	case string:
		return gojsonschema.NewStringLoader(t)
	default:
		return gojsonschema.NewGoLoader(v)
	}
}

func isEmptySchema(schema interface{}) bool {
	switch s := schema.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(s) == 0
	case []byte:
		return len(s) == 0
	}
	return false
}
