package orchestrator

import (
	"sort"

	"github.com/samber/lo"

	"driftaway/internal/providers/activities"
	"driftaway/internal/providers/budget"
	"driftaway/internal/providers/food"
	"driftaway/internal/providers/hotel"
	localtransport "driftaway/internal/providers/local-transport"
	primarytransport "driftaway/internal/providers/primary-transport"
	"driftaway/internal/providers/weather"
)

// Trip fields whose change re-runs a subset of providers.
const (
	FieldDestination = "destination"
	FieldTravelDates = "travel_dates"
	FieldBudget      = "budget"
	FieldPreferences = "preferences"
)

// routes maps a changed field to the providers whose output depends on it.
var routes = map[string][]string{
	FieldDestination: {weather.ID, activities.ID, hotel.ID, primarytransport.ID},
	FieldTravelDates: {hotel.ID, primarytransport.ID, localtransport.ID},
	FieldBudget:      {hotel.ID, food.ID, activities.ID},
	FieldPreferences: {food.ID, activities.ID},
}

// Route returns the providers affected by field.
func Route(field string) ([]string, bool) {
	ids, ok := routes[field]
	if !ok {
		return nil, false
	}
	return append([]string(nil), ids...), true
}

// Fields lists the routable field names in sorted order.
func Fields() []string {
	fields := lo.Keys(routes)
	sort.Strings(fields)
	return fields
}

// planOrder is the full-plan provider order.
var planOrder = []string{
	hotel.ID,
	food.ID,
	activities.ID,
	primarytransport.ID,
	localtransport.ID,
	weather.ID,
	budget.ID,
}
