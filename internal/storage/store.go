// Package storage provides abstractions for persistent selection storage.
package storage

import (
	"context"

	"github.com/mmynk/dinnerpicker/internal/models"
)

// Store defines the interface for selection storage operations.
// This abstraction allows swapping storage backends (memory, SQLite, Redis,
// DynamoDB) without changing the selection service.
//
// Every implementation is scoped to a single environment partition chosen at
// construction time, so dev and prod can share one backend.
type Store interface {
	// UpsertSelection inserts or fully replaces the selection keyed by
	// (sel.Date, sel.Person). The write is atomic with respect to readers.
	UpsertSelection(ctx context.Context, sel *models.Selection) error

	// ListSelections returns every selection recorded for date.
	// Returns an empty, non-nil mapping when there are none.
	ListSelections(ctx context.Context, date string) (models.DaySelections, error)

	// DeleteSelections removes every selection recorded for date.
	// Deleting an empty date is not an error.
	DeleteSelections(ctx context.Context, date string) error

	// Close releases any resources held by the store.
	Close() error
}

// LaterOf returns the newer of two write times, keeping updated_at
// non-decreasing for a key even if clocks step backwards.
func LaterOf(prev, next int64) int64 {
	if prev > next {
		return prev
	}
	return next
}
