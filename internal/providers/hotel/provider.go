// internal/providers/hotel/provider.go
package hotel

import (
	"fmt"

	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "hotel"

var MandatoryFields = []string{trip.FieldDestination, trip.FieldStartDate, trip.FieldEndDate}

var prompt = pipeline.MustTemplate(ID, `
Generate a list of hotel options for {{.Location}} for {{.Guests}} guests, checking in on {{.CheckIn}} and checking out on {{.CheckOut}}.
{{if .MaxBudget}}Prioritize hotels with prices within a budget of {{amount .MaxBudget}} INR.{{else}}Generate varied hotel options across different price ranges.{{end}}
{{if .Preference}}The user prefers hotels that are {{.Preference}}.{{end}}

Schema:
{
  "hotels": [
    {
      "id": "<hotel_id>",
      "name": "<hotel_name>",
      "price": <total_price_for_stay>,
      "rating": <rating_out_of_5>,
      "location": "<Area or landmark>",
      "amenities": ["<Amenity 1>", "<Amenity 2>"],
      "reason": "<Why it's recommended>",
      "bookingUrl": "<Direct booking URL>"
    }
  ],
  "topPicks": [
    {"id": "<hotel_id>", "name": "<hotel_name>", "reason": "<Why it's a top pick>", "price": <total_price_for_stay>}
  ],
  "summary": "<2-3 sentence summary of hotel options in {{.Location}}>"
}

Instructions:
- Use real hotel data available for {{.Location}}.
- Filter or prioritize hotels based on the user's budget and preferences.
- Include direct booking URLs where available.
`)

func New(engine *pipeline.Engine) pipeline.Provider {
	return pipeline.New(engine, pipeline.Spec[Request]{
		ID:      ID,
		Extract: Extract,
		Prompt:  Prompt,
		Mock:    Mock,
		Schema:  registry.OutputSchema(ID),
	})
}

func Extract(doc *trip.Document) (Request, error) {
	if err := doc.Require(MandatoryFields...); err != nil {
		return Request{}, err
	}
	req := Request{
		Location:   doc.DestinationName(),
		Guests:     doc.GuestCount(),
		CheckIn:    doc.StartDay(),
		CheckOut:   doc.EndDay(),
		Preference: doc.Preference("hotel"),
	}
	if amount, ok := doc.BudgetFor("hotel"); ok {
		req.MaxBudget = &amount
	}
	return req, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

func Mock(req Request) interface{} {
	luxury := Hotel{ID: "H001", Name: "Luxury Grand Hotel", Price: 15000, Rating: 4.8}
	midRange := Hotel{ID: "H002", Name: "Mid-Range Comfort Inn", Price: 7000, Rating: 4.2}
	budget := Hotel{ID: "H003", Name: "Budget Stay Lodge", Price: 3000, Rating: 3.5}
	scenic := Hotel{ID: "H004", Name: "Scenic View Resort", Price: 12000, Rating: 4.5}
	hub := Hotel{ID: "H005", Name: "Activity Hub Hotel", Price: 8000, Rating: 4.0}

	summary := fmt.Sprintf("Could not retrieve enriched summary for hotels in %s.", req.Location)
	if req.Preference != "" {
		summary += fmt.Sprintf(" Considering your preference for %s hotels.", req.Preference)
	}

	return Output{
		Hotels: []Hotel{luxury, midRange, budget, scenic, hub},
		TopPicks: []Hotel{
			{ID: luxury.ID, Name: luxury.Name, Reason: "Highest rated luxury option", Price: luxury.Price},
			{ID: midRange.ID, Name: midRange.Name, Reason: "Best value for money", Price: midRange.Price},
			{ID: budget.ID, Name: budget.Name, Reason: "Most affordable option", Price: budget.Price},
		},
		PriceRanges: map[string][]Hotel{
			"Luxury":    {luxury, scenic},
			"Mid-Range": {midRange, hub},
			"Budget":    {budget},
		},
		Summary: summary,
	}
}
