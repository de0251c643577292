package primarytransport

type Request struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type Output struct {
	Tickets []Ticket `json:"tickets"`
}

type Ticket struct {
	Direction     string `json:"direction"`
	Mode          string `json:"mode"`
	Operator      string `json:"operator"`
	Route         Route  `json:"route"`
	BoardingPoint string `json:"boardingPoint"`
	DropPoint     string `json:"dropPoint"`
	Fare          Fare   `json:"fare"`
	SeatType      string `json:"seatType"`
	BookingURL    string `json:"bookingUrl"`
}

type Route struct {
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
}

type Fare struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}
