// Package memory provides an in-process implementation of the storage.Store
// interface. Data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

const backend = "memory"

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with a mutex-guarded map.
// Layout: date -> person -> selection. Each process owns its data, so no
// environment partition is needed.
type MemoryStore struct {
	mu     sync.RWMutex
	days   map[string]map[string]*models.Selection
	closed bool
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		days: make(map[string]map[string]*models.Selection),
	}
}

// UpsertSelection stores a copy of sel, replacing any previous selection for
// the same date and person.
func (s *MemoryStore) UpsertSelection(ctx context.Context, sel *models.Selection) error {
	if err := ctx.Err(); err != nil {
		return storage.Wrap(backend, "upsert selection", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.Wrap(backend, "upsert selection", storage.ErrClosed)
	}

	day, ok := s.days[sel.Date]
	if !ok {
		day = make(map[string]*models.Selection)
		s.days[sel.Date] = day
	}

	stored := sel.Clone()
	if prev, ok := day[sel.Person]; ok {
		stored.UpdatedAt = time.Unix(0, storage.LaterOf(prev.UpdatedAt.UnixNano(), stored.UpdatedAt.UnixNano()))
	}
	day[sel.Person] = stored

	return nil
}

// ListSelections returns copies of every selection for date.
func (s *MemoryStore) ListSelections(ctx context.Context, date string) (models.DaySelections, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Wrap(backend, "list selections", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.Wrap(backend, "list selections", storage.ErrClosed)
	}

	result := make(models.DaySelections, len(s.days[date]))
	for person, sel := range s.days[date] {
		result[person] = sel.Clone()
	}
	return result, nil
}

// DeleteSelections drops every selection for date.
func (s *MemoryStore) DeleteSelections(ctx context.Context, date string) error {
	if err := ctx.Err(); err != nil {
		return storage.Wrap(backend, "delete selections", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.Wrap(backend, "delete selections", storage.ErrClosed)
	}

	delete(s.days, date)
	return nil
}

// Close marks the store unusable and releases its data.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.days = nil
	return nil
}
