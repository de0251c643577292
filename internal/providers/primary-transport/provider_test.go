package primarytransport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftaway/internal/common/validation"
	"driftaway/internal/model"
	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

func TestExtract_RequiresOrigin(t *testing.T) {
	_, err := Extract(&trip.Document{
		Destination: &trip.Place{Name: "Chennai"},
		StartDate:   "2025-09-15",
		EndDate:     "2025-09-18",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, trip.ErrMissingField)
	assert.Contains(t, err.Error(), "origin")
}

func TestExtract_NormalizesTimestamps(t *testing.T) {
	req, err := Extract(&trip.Document{
		Origin:      &trip.Place{Name: "Tambaram"},
		Destination: &trip.Place{Name: "Chennai"},
		StartDate:   "2025-09-15T00:00:00Z",
		EndDate:     "2025-09-18T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-09-15", req.StartDate)
	assert.Equal(t, "2025-09-18", req.EndDate)
	assert.Contains(t, Prompt(req), "onward journey is on 2025-09-15, and the return journey is on 2025-09-18")
}

func TestMock(t *testing.T) {
	out := Mock(Request{Origin: "Tambaram", Destination: "Chennai", StartDate: "2025-09-15"}).(Output)
	require.Len(t, out.Tickets, 1)
	assert.Equal(t, DirectionOnward, out.Tickets[0].Direction)
	assert.Equal(t, "2025-09-15T10:00:00+05:30", out.Tickets[0].Route.DepartureTime)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	result, err := validation.ValidateDocument(registry.OutputSchema(ID), raw)
	require.NoError(t, err)
	assert.True(t, result.Valid, result.Summary())
}

func TestEnrich_RejectsUnknownMode(t *testing.T) {
	gen := model.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return `{"tickets":[{"direction":"ONWARD","mode":"TELEPORT"}]}`, nil
	})

	res := New(pipeline.NewEngine(gen, nil, nil)).Enrich(context.Background(), &trip.Document{
		Origin:      &trip.Place{Name: "Tambaram"},
		Destination: &trip.Place{Name: "Chennai"},
		StartDate:   "2025-09-15",
		EndDate:     "2025-09-18",
	})

	assert.Equal(t, pipeline.StatusFallback, res.Status)
	assert.Contains(t, res.Reason, "schema mismatch")
}
