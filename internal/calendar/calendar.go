// Package calendar owns the process-wide definition of "today".
//
// A single Clock is built at startup from the configured timezone and shared
// by every request handler, so writers and readers never disagree about which
// day a selection belongs to.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/dinnerpicker/internal/models"
)

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD calendar days.
var ErrInvalidDate = errors.New("date must be a calendar day in YYYY-MM-DD form")

// Clock resolves the current calendar day in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Clock for the named IANA timezone ("" means UTC).
func New(timezone string) (*Clock, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixed returns a Clock whose current time is supplied by now. Used by
// tests and by tools replaying a specific day.
func NewFixed(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: now}
}

// Location returns the clock's timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the clock's location.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar day as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(models.DateLayout)
}

// Resolve returns date unchanged if it is a valid day, or Today() if it is
// empty. Callers resolve once per request and pass the result down.
func (c *Clock) Resolve(date string) (string, error) {
	if date == "" {
		return c.Today(), nil
	}
	if err := Validate(date); err != nil {
		return "", err
	}
	return date, nil
}

// Validate checks that date is a real YYYY-MM-DD calendar day.
func Validate(date string) error {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil || t.Format(models.DateLayout) != date {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
