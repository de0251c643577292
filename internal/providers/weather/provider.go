// internal/providers/weather/provider.go
package weather

import (
	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "weather"

var MandatoryFields = []string{trip.FieldDestination, trip.FieldStartDate, trip.FieldEndDate}

var prompt = pipeline.MustTemplate(ID, `
Generate a weather forecast for {{.Location}} from {{.StartDate}} to {{.EndDate}}.
{
  "location": "<City, State or Country>",
  "forecast": [
    {
      "date": "<YYYY-MM-DD>",
      "temperature": "<e.g., 78°F>",
      "condition": "<e.g., Sunny, Rainy, Cloudy>"
    }
  ]
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
	start, _ := doc.Start()
	end, _ := doc.End()
	return Request{
		Location:  doc.DestinationName(),
		StartDate: trip.FormatDate(start),
		EndDate:   trip.FormatDate(end),
	}, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

func Mock(req Request) interface{} {
	return Output{
		Location: req.Location,
		Forecast: []Day{
			{Date: req.StartDate, Temperature: "75°F", Condition: "Sunny"},
			{Date: req.EndDate, Temperature: "70°F", Condition: "Partly Cloudy"},
		},
	}
}
