package budget

type Request struct {
	Destination string             `json:"destination"`
	Origin      string             `json:"origin,omitempty"`
	StartDate   string             `json:"startDate,omitempty"`
	EndDate     string             `json:"endDate,omitempty"`
	Days        int                `json:"days"`
	Guests      int                `json:"guests"`
	Total       *float64           `json:"total,omitempty"`
	Currency    string             `json:"currency,omitempty"`
	Allocations map[string]float64 `json:"allocations,omitempty"`
}

type Output struct {
	Budget Estimate `json:"budget"`
}

type Estimate struct {
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	Breakdown []LineItem `json:"breakdown"`
}

type LineItem struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}
