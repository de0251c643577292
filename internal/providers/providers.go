// internal/providers/providers.go
package providers

import (
	"driftaway/internal/pipeline"
	"driftaway/internal/providers/activities"
	"driftaway/internal/providers/budget"
	"driftaway/internal/providers/food"
	"driftaway/internal/providers/hotel"
	localtransport "driftaway/internal/providers/local-transport"
	primarytransport "driftaway/internal/providers/primary-transport"
	"driftaway/internal/providers/weather"
)

// All builds every capability on engine, in full-plan order.
func All(engine *pipeline.Engine) []pipeline.Provider {
	return []pipeline.Provider{
		hotel.New(engine),
		food.New(engine),
		activities.New(engine),
		primarytransport.New(engine),
		localtransport.New(engine),
		weather.New(engine),
		budget.New(engine),
	}
}

// MandatoryFields lists the trip fields each provider refuses to run without.
func MandatoryFields() map[string][]string {
	return map[string][]string{
		hotel.ID:            hotel.MandatoryFields,
		food.ID:             food.MandatoryFields,
		activities.ID:       activities.MandatoryFields,
		primarytransport.ID: primarytransport.MandatoryFields,
		localtransport.ID:   localtransport.MandatoryFields,
		weather.ID:          weather.MandatoryFields,
		budget.ID:           budget.MandatoryFields,
	}
}
