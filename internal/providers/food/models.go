package food

type Request struct {
	City          string   `json:"city"`
	Guests        int      `json:"guests"`
	MaxMealBudget *float64 `json:"maxMealBudget,omitempty"`
	Preference    string   `json:"preference,omitempty"`
}

type Output struct {
	Cafes    []Cafe    `json:"cafes"`
	TopPicks []TopPick `json:"topPicks"`
	Summary  string    `json:"summary"`
}

type Cafe struct {
	Name       string  `json:"name"`
	Cuisine    string  `json:"cuisine"`
	PriceRange string  `json:"priceRange"`
	Rating     float64 `json:"rating"`
	Location   string  `json:"location"`
	Reason     string  `json:"reason"`
	URL        string  `json:"url"`
}

type TopPick struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
