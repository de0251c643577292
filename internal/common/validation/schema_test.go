package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var forecastSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"location", "forecast"},
	"properties": map[string]interface{}{
		"location": map[string]interface{}{"type": "string"},
		"forecast": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
		},
	},
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name      string
		document  interface{}
		wantValid bool
		wantField string
	}{
		{
			name:      "valid raw json",
			document:  []byte(`{"location":"Paris","forecast":[{"date":"2025-10-15"}]}`),
			wantValid: true,
		},
		{
			name:      "missing forecast",
			document:  []byte(`{"location":"Paris"}`),
			wantValid: false,
			wantField: "(root)",
		},
		{
			name:      "wrong type",
			document:  map[string]interface{}{"location": 42, "forecast": []interface{}{1}},
			wantValid: false,
			wantField: "location",
		},
		{
			name:      "empty forecast",
			document:  []byte(`{"location":"Paris","forecast":[]}`),
			wantValid: false,
			wantField: "forecast",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateDocument(forecastSchema, tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
				assert.NotEmpty(t, result.Summary())
			}
		})
	}
}

func TestValidateDocument_EmptySchemaAcceptsAnything(t *testing.T) {
	result, err := ValidateDocument(nil, []byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Summary())
}

func TestValidateDocument_MalformedDocument(t *testing.T) {
	_, err := ValidateDocument(forecastSchema, []byte(`{not json`))
	assert.Error(t, err)
}
