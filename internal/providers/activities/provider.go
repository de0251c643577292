// internal/providers/activities/provider.go
package activities

import (
	"fmt"

	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "activities"

var MandatoryFields = []string{trip.FieldDestination, trip.FieldStartDate, trip.FieldEndDate}

var prompt = pipeline.MustTemplate(ID, `
Generate a day-wise itinerary of activities in {{.Destination}} for a {{.Days}}-day trip from {{.StartDate}} to {{.EndDate}}.
{{if .Budget}}The user has a budget of {{amount .Budget}} for activities.{{else}}The user has no fixed budget for activities.{{end}}
{{if .Preference}}The user prefers {{.Preference}}.{{else}}The user has no stated activity preference.{{end}}

{
  "location": "<City, State or Country>",
  "itinerary": [
    {
      "day": "<Day 1, Day 2, etc.>",
      "date": "<YYYY-MM-DD>",
      "activities": [
        {
          "id": "<unique_activity_id>",
          "name": "<activity_name>",
          "type": "<e.g., Museum, Park, Beach>",
          "location": "<City>",
          "rating": <float between 1.0 and 5.0>,
          "reviewCount": <integer>,
          "imageUrl": "<image URL>",
          "tags": ["<tag1>", "<tag2>"],
          "reason": "<Why it's recommended>"
        }
      ]
    }
  ],
  "summary": "<2-3 sentence summary of the itinerary>",
  "budgetUsed": <estimated total activity cost>,
  "preferenceMatch": "<summary of how preferences were applied>"
}
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
		Destination: doc.DestinationName(),
		StartDate:   doc.StartDay(),
		EndDate:     doc.EndDay(),
		Days:        max(doc.DurationDays(), 1),
		Preference:  doc.Preference("activities"),
	}
	if amount, ok := doc.BudgetFor("activities"); ok {
		req.Budget = &amount
	}
	return req, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

// Mock returns one empty day per trip day, dated from StartDate when it
// parses.
func Mock(req Request) interface{} {
	start, dated := trip.ParseDate(req.StartDate)
	itinerary := make([]Day, 0, req.Days)
	for i := 0; i < req.Days; i++ {
		day := Day{Day: fmt.Sprintf("Day %d", i+1), Activities: []Activity{}}
		if dated {
			day.Date = trip.FormatDate(start.AddDate(0, 0, i))
		}
		itinerary = append(itinerary, day)
	}

	return Output{
		Location:        req.Destination,
		Itinerary:       itinerary,
		Summary:         "Could not generate a personalized itinerary. Please try again.",
		BudgetUsed:      0,
		PreferenceMatch: "N/A",
	}
}
