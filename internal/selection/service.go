// Package selection implements the selection store semantics: input
// normalization, validation, full-replace upserts, per-day reads, resets
// and summaries. It is independent of transport and storage backend.
package selection

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/dinnerpicker/internal/calculator"
	"github.com/mmynk/dinnerpicker/internal/calendar"
	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

// saveInput is the normalized request checked by the validator.
type saveInput struct {
	Person  string  `validate:"required,max=64"`
	Starter *string `validate:"omitempty,max=256"`
	Main    *string `validate:"omitempty,max=256"`
}

// Service coordinates a storage.Store and the shared calendar clock.
type Service struct {
	store    storage.Store
	clock    *calendar.Clock
	validate *validator.Validate
}

// NewService creates a Service over store. The clock defines "today" for
// requests that do not name a date.
func NewService(store storage.Store, clock *calendar.Clock) *Service {
	return &Service{
		store:    store,
		clock:    clock,
		validate: validator.New(),
	}
}

// ResolveDate returns date, or today when date is empty.
func (s *Service) ResolveDate(date string) (string, error) {
	resolved, err := s.clock.Resolve(strings.TrimSpace(date))
	if err != nil {
		return "", invalid(FieldDate, "%v", err)
	}
	return resolved, nil
}

// SaveSelection records person's choice for date, fully replacing any earlier
// choice for that day. Blank and "no-selection" dishes are treated as not
// chosen; at least one course must remain.
//
// The returned record is read back from the store, so its UpdatedAt is the
// stored stamp, which stays at an earlier write's time if the clock stepped back.
//
// Returns a *ValidationError when the input is rejected and a *storage.Error
// when the write could not be persisted.
func (s *Service) SaveSelection(ctx context.Context, date, person, starter, main string) (*models.Selection, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return nil, err
	}

	in := saveInput{
		Person:  strings.TrimSpace(person),
		Starter: normalizeDish(starter),
		Main:    normalizeDish(main),
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	sel := &models.Selection{
		Date:      date,
		Person:    in.Person,
		Starter:   in.Starter,
		Main:      in.Main,
		UpdatedAt: s.clock.Now(),
	}

	if err := s.store.UpsertSelection(ctx, sel); err != nil {
		slog.Error("Failed to save selection", "date", date, "person", sel.Person, "error", err)
		return nil, storage.Wrap("store", "upsert selection", err)
	}

	slog.Debug("Selection saved", "date", date, "person", sel.Person, "starter", deref(sel.Starter), "main", deref(sel.Main))

	day, err := s.store.ListSelections(ctx, date)
	if err != nil {
		return nil, storage.Wrap("store", "read back selection", err)
	}
	// A concurrent reset may already have removed it.
	if stored, ok := day[sel.Person]; ok && stored != nil {
		return stored, nil
	}
	return sel, nil
}

// GetSelectionsForDate returns everyone's selection for date. A day with no
// selections yields an empty mapping, not an error.
func (s *Service) GetSelectionsForDate(ctx context.Context, date string) (models.DaySelections, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return nil, err
	}

	day, err := s.store.ListSelections(ctx, date)
	if err != nil {
		return nil, storage.Wrap("store", "list selections", err)
	}
	if day == nil {
		day = models.DaySelections{}
	}
	return day, nil
}

// ClearSelectionsForDate deletes every selection for date. Clearing an empty
// day succeeds.
func (s *Service) ClearSelectionsForDate(ctx context.Context, date string) error {
	date, err := s.ResolveDate(date)
	if err != nil {
		return err
	}

	if err := s.store.DeleteSelections(ctx, date); err != nil {
		return storage.Wrap("store", "delete selections", err)
	}

	slog.Info("Selections cleared", "date", date)
	return nil
}

// GetSelectionSummary counts starters and mains chosen for date.
func (s *Service) GetSelectionSummary(ctx context.Context, date string) (*models.SelectionSummary, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return nil, err
	}

	day, err := s.GetSelectionsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return calculator.Summarize(date, day), nil
}

// check runs struct validation and the at-least-one-course rule.
func (s *Service) check(in saveInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return invalid(FieldPerson, "invalid selection: %v", err)
		}
		return fromFieldError(verrs[0])
	}

	if in.Starter == nil && in.Main == nil {
		return invalid(FieldDishes, "must select at least a starter or main course")
	}
	return nil
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, "missing required field: %s", field)
	case "max":
		return invalid(field, "%s must be at most %s characters", field, fe.Param())
	default:
		return invalid(field, "%s failed %s validation", field, fe.Tag())
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
