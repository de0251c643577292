// internal/trip/document.go
package trip

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format of trip dates.
const DateLayout = "2006-01-02"

// DefaultDurationDays is used when the trip length cannot be derived from its dates.
const DefaultDurationDays = 5

// Field names accepted by Require.
const (
	FieldDestination = "destination"
	FieldOrigin      = "origin"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
)

// ErrMissingField marks a document lacking data a provider cannot work without.
var ErrMissingField = errors.New("MISSING_MANDATORY_FIELD")

type Place struct {
	Name string `json:"name,omitempty"`
}

type Allocation struct {
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

type Budget struct {
	Total      *float64              `json:"total,omitempty"`
	Currency   string                `json:"currency,omitempty"`
	Allocation map[string]Allocation `json:"allocation,omitempty"`
}

// Document is a user's persisted trip. Every field is optional; use the
// accessor methods rather than reading fields directly.
type Document struct {
	UID         string                 `json:"uid,omitempty"`
	Destination *Place                 `json:"destination,omitempty"`
	Origin      *Place                 `json:"origin,omitempty"`
	StartDate   string                 `json:"startDate,omitempty"`
	EndDate     string                 `json:"endDate,omitempty"`
	Guests      *int                   `json:"guests,omitempty"`
	Budget      *Budget                `json:"budget,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`

	// Ignored lists stored fields that were present but unusable and were
	// decoded as absent.
	Ignored []string `json:"-"`
}

func (d *Document) DestinationName() string {
	if d == nil || d.Destination == nil {
		return ""
	}
	return strings.TrimSpace(d.Destination.Name)
}

func (d *Document) OriginName() string {
	if d == nil || d.Origin == nil {
		return ""
	}
	return strings.TrimSpace(d.Origin.Name)
}

// GuestCount returns the number of travellers, at least 1.
func (d *Document) GuestCount() int {
	if d == nil || d.Guests == nil || *d.Guests < 1 {
		return 1
	}
	return *d.Guests
}

// BudgetFor returns the allocated amount for a category such as "hotel".
func (d *Document) BudgetFor(category string) (float64, bool) {
	if d == nil || d.Budget == nil {
		return 0, false
	}
	a, ok := d.Budget.Allocation[category]
	if !ok || a.Amount == nil {
		return 0, false
	}
	return *a.Amount, true
}

// TotalBudget returns the overall budget and its currency.
func (d *Document) TotalBudget() (float64, string, bool) {
	if d == nil || d.Budget == nil || d.Budget.Total == nil {
		return 0, "", false
	}
	return *d.Budget.Total, d.Budget.Currency, true
}

// Preference renders the preference for category as prompt text. Lists are
// joined with commas; absent preferences yield "".
func (d *Document) Preference(category string) string {
	if d == nil {
		return ""
	}
	switch v := d.Preferences[category].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// Start parses the start date.
func (d *Document) Start() (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	return ParseDate(d.StartDate)
}

// End parses the end date.
func (d *Document) End() (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	return ParseDate(d.EndDate)
}

// StartDay is the start date as YYYY-MM-DD, or "" when it cannot be parsed.
func (d *Document) StartDay() string {
	if t, ok := d.Start(); ok {
		return FormatDate(t)
	}
	return ""
}

// EndDay is the end date as YYYY-MM-DD, or "" when it cannot be parsed.
func (d *Document) EndDay() string {
	if t, ok := d.End(); ok {
		return FormatDate(t)
	}
	return ""
}

// DurationDays is the exclusive day count endDate - startDate. Missing,
// unparsable or inverted dates yield DefaultDurationDays.
func (d *Document) DurationDays() int {
	start, okStart := d.Start()
	end, okEnd := d.End()
	if !okStart || !okEnd {
		return DefaultDurationDays
	}
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return DefaultDurationDays
	}
	return days
}

// Require reports every named field that is absent or unusable, wrapped in
// ErrMissingField.
func (d *Document) Require(fields ...string) error {
	var missing []string
	for _, f := range fields {
		ok := false
		switch f {
		case FieldDestination:
			ok = d.DestinationName() != ""
		case FieldOrigin:
			ok = d.OriginName() != ""
		case FieldStartDate:
			_, ok = d.Start()
		case FieldEndDate:
			_, ok = d.End()
		}
		if !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, day := t.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
