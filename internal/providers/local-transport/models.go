package localtransport

type Request struct {
	Destination  string `json:"destination"`
	StartDate    string `json:"startDate,omitempty"`
	DurationDays int    `json:"durationDays"`
}

type Output struct {
	LocalTransportOptions []Option `json:"localTransportOptions"`
}

type Option struct {
	Mode               string `json:"mode"`
	Operator           string `json:"operator"`
	DriveType          string `json:"driveType"`
	PickupLocation     string `json:"pickupLocation"`
	DropLocation       string `json:"dropLocation"`
	RentalDurationDays int    `json:"rentalDurationDays"`
	Fare               Fare   `json:"fare"`
	BookingURL         string `json:"bookingUrl"`
}

type Fare struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}
