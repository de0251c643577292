// internal/providers/budget/provider.go
package budget

import (
	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "budget"

var MandatoryFields = []string{trip.FieldDestination}

var prompt = pipeline.MustTemplate(ID, `
Estimate the total spend for a {{.Days}}-day trip to {{.Destination}} for {{.Guests}} travellers{{if .Origin}} starting from {{.Origin}}{{end}}{{if .StartDate}} between {{.StartDate}} and {{.EndDate}}{{end}}.
{{if .Total}}The user plans to spend about {{amount .Total}} {{.Currency}} in total; keep the estimate close to it.{{else}}The user has not set a total budget; suggest a realistic mid-range estimate.{{end}}
{{range $category, $amount := .Allocations}}- {{$category}} is allocated {{$amount}}.
{{end}}
{
  "budget": {
    "total": <number>,
    "currency": "<ISO currency code>",
    "breakdown": [
      {"category": "<Flights | Accommodation | Food | Activities | Local transport>", "amount": <number>}
    ]
  }
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
		Origin:      doc.OriginName(),
		Days:        doc.DurationDays(),
		Guests:      doc.GuestCount(),
	}
	if start, ok := doc.Start(); ok {
		if end, ok := doc.End(); ok {
			req.StartDate = trip.FormatDate(start)
			req.EndDate = trip.FormatDate(end)
		}
	}
	if total, currency, ok := doc.TotalBudget(); ok {
		req.Total = &total
		req.Currency = currency
	}
	if doc.Budget != nil {
		for category := range doc.Budget.Allocation {
			if amount, ok := doc.BudgetFor(category); ok {
				if req.Allocations == nil {
					req.Allocations = make(map[string]float64)
				}
				req.Allocations[category] = amount
			}
		}
	}
	return req, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

func Mock(req Request) interface{} {
	return Output{
		Budget: Estimate{
			Total:    2000,
			Currency: "USD",
			Breakdown: []LineItem{
				{Category: "Flights", Amount: 800},
				{Category: "Accommodation", Amount: 600},
				{Category: "Food", Amount: 400},
				{Category: "Activities", Amount: 200},
			},
		},
	}
}
