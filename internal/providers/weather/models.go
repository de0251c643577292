package weather

type Request struct {
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Output struct {
	Location string `json:"location"`
	Forecast []Day  `json:"forecast"`
}

type Day struct {
	Date        string `json:"date"`
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
}
