package models

import "time"

// DateLayout is the calendar day format used as the partition key.
const DateLayout = "2006-01-02"

// Selection represents one person's dinner choice for one day.
type Selection struct {
	// Date is the calendar day in YYYY-MM-DD form.
	Date string `json:"-"`

	// Person is the display name of whoever made the choice.
	// Unique within a Date.
	Person string `json:"-"`

	// Starter is the chosen starter dish reference, nil when none was chosen.
	Starter *string `json:"starter"`

	// Main is the chosen main course dish reference, nil when none was chosen.
	Main *string `json:"main"`

	// UpdatedAt is when the selection was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasChoice reports whether at least one course is chosen.
func (s *Selection) HasChoice() bool {
	return s.Starter != nil || s.Main != nil
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Selection) Clone() *Selection {
	c := *s
	if s.Starter != nil {
		v := *s.Starter
		c.Starter = &v
	}
	if s.Main != nil {
		v := *s.Main
		c.Main = &v
	}
	return &c
}

// DaySelections maps person name to that person's Selection for a single day.
type DaySelections map[string]*Selection

// SelectionSummary is the aggregate view of one day's selections.
type SelectionSummary struct {
	// Date is the day the summary was computed for.
	Date string `json:"date"`

	// Individual is the full per-person mapping the counts were derived from.
	Individual DaySelections `json:"individual"`

	// Starters maps starter dish reference to the number of people who chose it.
	Starters map[string]int `json:"starters"`

	// Mains maps main dish reference to the number of people who chose it.
	Mains map[string]int `json:"mains"`
}
