// cmd/driftaway/plan.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"driftaway/internal/orchestrator"
)

type planFlags struct {
	uid      string
	field    string
	provider string
	force    bool
	tripFile string
}

func newPlanCmd() *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run providers for one trip and print the aggregate as JSON",
		Example: `  driftaway plan --uid user-1
  driftaway plan --uid user-1 --field budget --force
  driftaway plan --uid user-1 --provider weather --trip-file trips.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.field != "" && f.provider != "" {
				return fmt.Errorf("--field and --provider are mutually exclusive")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, f.tripFile)
			if err != nil {
				return err
			}
			defer a.Close()

			return runPlan(ctx, a.orchestrator, f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.uid, "uid", "", "trip owner id")
	cmd.Flags().StringVar(&f.field, "field", "", "rerun only the providers affected by this field")
	cmd.Flags().StringVar(&f.provider, "provider", "", "rerun a single provider")
	cmd.Flags().BoolVar(&f.force, "force", false, "skip the response cache")
	cmd.Flags().StringVar(&f.tripFile, "trip-file", "", "read trips from a JSON file instead of Firestore")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

type planner interface {
	PlanTrip(ctx context.Context, uid string, opts orchestrator.Options) (*orchestrator.AggregateResult, error)
	FieldUpdate(ctx context.Context, uid, field string, opts orchestrator.Options) (*orchestrator.AggregateResult, error)
	RunProvider(ctx context.Context, uid, providerID string, opts orchestrator.Options) (*orchestrator.AggregateResult, error)
}

func runPlan(ctx context.Context, p planner, f planFlags, out io.Writer) error {
	opts := orchestrator.Options{Force: f.force}

	var (
		agg *orchestrator.AggregateResult
		err error
	)
	switch {
	case f.field != "":
		agg, err = p.FieldUpdate(ctx, f.uid, f.field, opts)
	case f.provider != "":
		agg, err = p.RunProvider(ctx, f.uid, f.provider, opts)
	default:
		agg, err = p.PlanTrip(ctx, f.uid, opts)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(agg)
}
