// internal/providers/local-transport/provider.go
package localtransport

import (
	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

const ID = "local-transport"

var MandatoryFields = []string{trip.FieldDestination}

var prompt = pipeline.MustTemplate(ID, `
Generate a list of dedicated cab rental options for a trip to {{.Destination}}{{if .StartDate}}, starting on {{.StartDate}}{{end}} and lasting {{.DurationDays}} days.
The user may prefer either a self-drive or chauffeur-driven vehicle; include both options if available.
Each option must have:
- "mode": "CAB", "SUV", or "VAN"
- "operator": a realistic rental provider name
- "driveType": "SELF-DRIVE" or "WITH DRIVER"
- "pickupLocation": a suitable pickup point like airport, railway station, or hotel area
- "dropLocation": same as pickup or a flexible drop-off zone
- "rentalDurationDays": integer value matching the trip duration
- "fare": an object with "currency" (e.g., "INR") and "amount" (e.g., 4500)
- "bookingUrl": a realistic booking URL
Prioritize full-trip rentals over point-to-point sightseeing transport.

{
  "localTransportOptions": [
    {
      "mode": "CAB",
      "operator": "<Operator>",
      "driveType": "WITH DRIVER",
      "pickupLocation": "<Pickup>",
      "dropLocation": "<Drop>",
      "rentalDurationDays": {{.DurationDays}},
      "fare": {"currency": "INR", "amount": <amount>},
      "bookingUrl": "<URL>"
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

// Extract needs only the destination. Dates are optional here and the rental
// length falls back to the default trip duration.
func Extract(doc *trip.Document) (Request, error) {
	if err := doc.Require(MandatoryFields...); err != nil {
		return Request{}, err
	}
	req := Request{
		Destination:  doc.DestinationName(),
		DurationDays: doc.DurationDays(),
	}
	if start, ok := doc.Start(); ok {
		req.StartDate = trip.FormatDate(start)
	}
	return req, nil
}

func Prompt(req Request) string {
	return prompt.Render(req)
}

func Mock(req Request) interface{} {
	return Output{
		LocalTransportOptions: []Option{
			{
				Mode:               "SUV",
				Operator:           "Zoomcar",
				DriveType:          "SELF-DRIVE",
				PickupLocation:     req.Destination + " Airport",
				DropLocation:       req.Destination + " Airport",
				RentalDurationDays: req.DurationDays,
				Fare:               Fare{Currency: "INR", Amount: 5500},
				BookingURL:         "https://mock-booking.com/zoomcar/1",
			},
			{
				Mode:               "CAB",
				Operator:           "Ola Rentals",
				DriveType:          "WITH DRIVER",
				PickupLocation:     req.Destination + " Railway Station",
				DropLocation:       req.Destination + " Railway Station",
				RentalDurationDays: req.DurationDays,
				Fare:               Fare{Currency: "INR", Amount: 4200},
				BookingURL:         "https://mock-booking.com/ola/2",
			},
		},
	}
}
