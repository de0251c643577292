// internal/providers/primary-transport/provider.go
package primarytransport

import (
	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "primary-transport"

const (
	DirectionOnward = "ONWARD"
	DirectionReturn = "RETURN"
)

var MandatoryFields = []string{trip.FieldOrigin, trip.FieldDestination, trip.FieldStartDate, trip.FieldEndDate}

var prompt = pipeline.MustTemplate(ID, `
Generate a list of long-distance transport ticket options for a round trip between '{{.Origin}}' and '{{.Destination}}'.
The onward journey is on {{.StartDate}}, and the return journey is on {{.EndDate}}.

Schema:
{
  "tickets": [
    {
      "direction": "ONWARD" | "RETURN",
      "mode": "FLIGHT" | "TRAIN" | "BUS",
      "operator": "<Operator Name>",
      "route": {
        "from": "<Origin>",
        "to": "<Destination>",
        "departureTime": "<ISO 8601 Timestamp>",
        "arrivalTime": "<ISO 8601 Timestamp>"
      },
      "boardingPoint": "<Nearest airport, train station, or bus terminal to origin>",
      "dropPoint": "<Nearest airport, train station, or bus terminal to destination>",
      "fare": {"currency": "INR", "amount": <Realistic integer fare>},
      "seatType": "Economy" | "Sleeper" | "AC Seater",
      "bookingUrl": "<Unique booking URL>"
    }
  ]
}

Instructions:
- Generate 3 to 5 realistic tickets for each direction (ONWARD and RETURN).
- Use varied transport modes and operators.
- Ensure each ticket has a unique booking URL.
- All timestamps must be in ISO 8601 format.
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
	return Request{
		Origin:      doc.OriginName(),
		Destination: doc.DestinationName(),
		StartDate:   doc.StartDay(),
		EndDate:     doc.EndDay(),
	}, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

func Mock(req Request) interface{} {
	date := req.StartDate
	if t, ok := trip.ParseDate(req.StartDate); ok {
		date = trip.FormatDate(t)
	}

	return Output{
		Tickets: []Ticket{
			{
				Direction: DirectionOnward,
				Mode:      "TRAIN",
				Operator:  "Southern Railways",
				Route: Route{
					From:          req.Origin,
					To:            req.Destination,
					DepartureTime: date + "T10:00:00+05:30",
					ArrivalTime:   date + "T14:30:00+05:30",
				},
				BoardingPoint: req.Origin + " Railway Station",
				DropPoint:     req.Destination + " Railway Station",
				Fare:          Fare{Currency: "INR", Amount: 120},
				SeatType:      "Sleeper",
				BookingURL:    "https://mocktransport.com/book?tripId=XYZ123",
			},
		},
	}
}
