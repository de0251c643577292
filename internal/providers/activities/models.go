package activities

type Request struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Days        int      `json:"days"`
	Budget      *float64 `json:"budget,omitempty"`
	Preference  string   `json:"preference,omitempty"`
}

type Output struct {
	Location        string  `json:"location"`
	Itinerary       []Day   `json:"itinerary"`
	Summary         string  `json:"summary"`
	BudgetUsed      float64 `json:"budgetUsed"`
	PreferenceMatch string  `json:"preferenceMatch"`
}

type Day struct {
	Day        string     `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Location    string   `json:"location"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	Reason      string   `json:"reason"`
}
