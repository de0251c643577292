// cmd/driftaway/registry.go
package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"driftaway/internal/common/validation"
	"driftaway/internal/pipeline"
	"driftaway/internal/providers"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the provider registry",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry against the compiled providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			return validateRegistry(reg, cmd.OutOrStdout())
		},
	}
	validate.Flags().StringVar(&path, "path", "", "registry file (default: the embedded registry)")

	cmd.AddCommand(validate)
	return cmd
}

func loadRegistry(path string) (*registry.ProviderRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

// sampleTrip satisfies every provider's mandatory fields.
func sampleTrip() *trip.Document {
	guests := 2
	total := 2000.0
	return &trip.Document{
		UID:         "registry-check",
		Destination: &trip.Place{Name: "Lisbon"},
		Origin:      &trip.Place{Name: "Madrid"},
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-05",
		Guests:      &guests,
		Budget:      &trip.Budget{Total: &total, Currency: "USD"},
	}
}

// validateRegistry checks that the registry and the compiled providers agree
// on ids and mandatory fields, and that every fallback payload satisfies the
// provider's output schema.
func validateRegistry(reg *registry.ProviderRegistry, out io.Writer) error {
	if len(reg.Providers) == 0 {
		return fmt.Errorf("registry contains no providers")
	}

	compiled := providers.MandatoryFields()
	listed := lo.Map(reg.Providers, func(p registry.Provider, _ int) string { return p.ID })
	if missing, extra := lo.Difference(lo.Keys(compiled), listed); len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return fmt.Errorf("registry out of sync: missing %v, unknown %v", missing, extra)
	}

	fallbacks := make(map[string]pipeline.Result)
	engine := pipeline.NewEngine(nil, nil, nil)
	doc := sampleTrip()
	for _, p := range providers.All(engine) {
		fallbacks[p.ID()] = p.Enrich(context.Background(), doc)
	}

	for _, p := range reg.Providers {
		if p.DisplayName == "" {
			return fmt.Errorf("provider %s missing required field: displayName", p.ID)
		}
		want := append([]string(nil), compiled[p.ID]...)
		got := append([]string(nil), p.MandatoryFields...)
		sort.Strings(want)
		sort.Strings(got)
		if !lo.Every(want, got) || len(want) != len(got) {
			return fmt.Errorf("provider %s mandatory fields %v, code requires %v", p.ID, got, want)
		}

		res := fallbacks[p.ID]
		if !res.Usable() {
			return fmt.Errorf("provider %s produced no fallback: %s", p.ID, res.Message)
		}
		check, err := validation.ValidateDocument(p.OutputSchema, []byte(res.Payload))
		if err != nil {
			return fmt.Errorf("provider %s output schema: %w", p.ID, err)
		}
		if !check.Valid {
			return fmt.Errorf("provider %s fallback violates its schema: %s", p.ID, check.Summary())
		}
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d providers.\n", len(reg.Providers))
	return nil
}
