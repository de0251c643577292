// internal/providers/food/provider.go
package food

import (
	"fmt"

	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "food"

var MandatoryFields = []string{trip.FieldDestination}

var prompt = pipeline.MustTemplate(ID, `
Suggest 5 to 7 cafes in {{.City}} for {{.Guests}} people.
{{if .Preference}}Focus on cafes offering {{.Preference}} cuisine. {{end}}{{if .MaxMealBudget}}Prioritize cafes where the average meal cost per person is around {{amount .MaxMealBudget}} INR.{{else}}Include cafes across various price ranges.{{end}}
For each cafe, include its name, cuisine, price range, rating (out of 5), location, and a brief reason for recommendation.
Include actual booking or location URLs from known platforms (e.g., Zomato, TripAdvisor, Google Maps).

{
  "cafes": [
    {
      "name": "<Cafe Name>",
      "cuisine": "<Cuisine Type>",
      "priceRange": "<avg price per person for a meal>",
      "rating": <Rating out of 5 (float)>,
      "location": "<Address or Landmark>",
      "reason": "<Brief reason for recommendation>",
      "url": "<Booking or Location URL>"
    }
  ],
  "topPicks": [
    {"name": "<Cafe Name>", "reason": "<Why it's a top pick>"}
  ],
  "summary": "<Short description of the food scene in {{.City}}>"
}
Cafe suggestions must be based on real, up-to-date data.
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
		City:       doc.DestinationName(),
		Guests:     doc.GuestCount(),
		Preference: doc.Preference("food"),
	}
	if amount, ok := doc.BudgetFor("food"); ok {
		req.MaxMealBudget = &amount
	}
	return req, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

func Mock(req Request) interface{} {
	summary := fmt.Sprintf("Explore the diverse food scene in %s.", req.City)
	if req.Preference != "" {
		summary += fmt.Sprintf(" You might enjoy %s options.", req.Preference)
	}

	return Output{
		Cafes: []Cafe{
			{
				Name: "The Daily Grind", Cuisine: "Continental", PriceRange: "$", Rating: 4.2,
				Location: "City Center", Reason: "Great for a quick coffee and light bites.",
				URL: "https://www.mockdata.com/maps/search/The+Daily+Grind",
			},
			{
				Name: "Spice Route Cafe", Cuisine: "Indian", PriceRange: "$", Rating: 4.5,
				Location: "Old Town", Reason: "Authentic local flavors in a cozy setting.",
				URL: "https://www.mockdata.com/spice-route-cafe",
			},
			{
				Name: "Green Leaf Bistro", Cuisine: "Healthy", PriceRange: "$", Rating: 4.0,
				Location: "Near Park", Reason: "Fresh salads and organic options.",
				URL: "https://www.mockdata.com/GreenLeafBistro",
			},
			{
				Name: "Cafe Amore", Cuisine: "Italian", PriceRange: "$$", Rating: 4.7,
				Location: "Riverside", Reason: "Romantic ambiance with delicious pasta.",
				URL: "https://www.mockdata.com/maps/search/Cafe+Amore",
			},
		},
		TopPicks: []TopPick{
			{Name: "Spice Route Cafe", Reason: "Highly recommended for local cuisine."},
			{Name: "The Daily Grind", Reason: "Popular spot for breakfast and coffee."},
			{Name: "Cafe Amore", Reason: "Perfect for a special evening out."},
		},
		Summary: summary,
	}
}
