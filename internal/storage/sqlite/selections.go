package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

// UpsertSelection inserts a selection or replaces the existing one for the
// same environment, date and person in a single statement.
func (s *SQLiteStore) UpsertSelection(ctx context.Context, sel *models.Selection) error {
	query := `
		INSERT INTO selections (environment, date, person, starter, main, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (environment, date, person) DO UPDATE SET
			starter = excluded.starter,
			main = excluded.main,
			updated_at = MAX(selections.updated_at, excluded.updated_at)
	`

	_, err := s.db.ExecContext(ctx, query,
		s.environment,
		sel.Date,
		sel.Person,
		nullString(sel.Starter),
		nullString(sel.Main),
		sel.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return storage.Wrap(backend, "upsert selection", err)
	}

	return nil
}

// ListSelections retrieves every selection for date in this environment.
func (s *SQLiteStore) ListSelections(ctx context.Context, date string) (models.DaySelections, error) {
	query := `
		SELECT person, starter, main, updated_at
		FROM selections
		WHERE environment = ? AND date = ?
		ORDER BY person
	`

	rows, err := s.db.QueryContext(ctx, query, s.environment, date)
	if err != nil {
		return nil, storage.Wrap(backend, "list selections", err)
	}
	defer rows.Close()

	day := make(models.DaySelections)
	for rows.Next() {
		var (
			sel           = &models.Selection{Date: date}
			starter, main sql.NullString
			updatedAt     int64
		)
		if err := rows.Scan(&sel.Person, &starter, &main, &updatedAt); err != nil {
			return nil, storage.Wrap(backend, "scan selection", err)
		}
		sel.Starter = fromNullString(starter)
		sel.Main = fromNullString(main)
		sel.UpdatedAt = time.Unix(0, updatedAt)
		day[sel.Person] = sel
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(backend, "iterate selections", err)
	}

	return day, nil
}

// DeleteSelections removes every selection for date in this environment.
func (s *SQLiteStore) DeleteSelections(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM selections WHERE environment = ? AND date = ?",
		s.environment, date,
	)
	if err != nil {
		return storage.Wrap(backend, "delete selections", err)
	}
	return nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
