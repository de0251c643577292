// internal/providers/hotel/models.go
package hotel

type Request struct {
	Location   string   `json:"location"`
	Guests     int      `json:"guests"`
	CheckIn    string   `json:"checkIn"`
	CheckOut   string   `json:"checkOut"`
	MaxBudget  *float64 `json:"maxBudget,omitempty"`
	Preference string   `json:"preference,omitempty"`
}

type Output struct {
	Hotels      []Hotel            `json:"hotels"`
	TopPicks    []Hotel            `json:"topPicks"`
	PriceRanges map[string][]Hotel `json:"priceRanges,omitempty"`
	Summary     string             `json:"summary"`
}

type Hotel struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Rating     float64  `json:"rating,omitempty"`
	Location   string   `json:"location,omitempty"`
	Amenities  []string `json:"amenities,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	BookingURL string   `json:"bookingUrl,omitempty"`
}
