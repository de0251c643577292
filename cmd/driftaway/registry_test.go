// cmd/driftaway/registry_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftaway/pkg/registry"
)

func TestValidateRegistry_Embedded(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, validateRegistry(reg, &out))
	assert.Contains(t, out.String(), "Found 7 providers")
}

func TestValidateRegistry_Rejects(t *testing.T) {
	base, err := registry.Default()
	require.NoError(t, err)

	clone := func() *registry.ProviderRegistry {
		cp := *base
		cp.Providers = append([]registry.Provider(nil), base.Providers...)
		return &cp
	}

	tests := []struct {
		name     string
		mutate   func(r *registry.ProviderRegistry)
		expected string
	}{
		{
			name:     "empty",
			mutate:   func(r *registry.ProviderRegistry) { r.Providers = nil },
			expected: "no providers",
		},
		{
			name:     "provider dropped",
			mutate:   func(r *registry.ProviderRegistry) { r.Providers = r.Providers[1:] },
			expected: "out of sync",
		},
		{
			name: "mandatory fields drift",
			mutate: func(r *registry.ProviderRegistry) {
				p, _ := r.Lookup("weather")
				p.MandatoryFields = []string{"destination"}
			},
			expected: "mandatory fields",
		},
		{
			name: "schema rejects fallback",
			mutate: func(r *registry.ProviderRegistry) {
				p, _ := r.Lookup("food")
				p.OutputSchema = map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"michelinStars"},
				}
			},
			expected: "violates its schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := clone()
			tt.mutate(reg)

			err := validateRegistry(reg, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestRegistryCmd_ValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"providers":[{"id":"weather","displayName":"Weather"}]}`), 0o600))

	root := newRootCmd()
	root.SetArgs([]string{"registry", "validate", "--path", path})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of sync")
}
