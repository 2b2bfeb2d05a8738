// Package storagetest holds the behavioral test suite every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

// Factory returns a fresh, empty store for the named environment.
// The factory is responsible for registering cleanup.
type Factory func(t *testing.T, environment string) storage.Store

// Dish returns a pointer to s.
func Dish(s string) *string { return &s }

// NewSelection builds a selection stamped at the given time.
func NewSelection(date, person string, starter, main *string, at time.Time) *models.Selection {
	return &models.Selection{
		Date:      date,
		Person:    person,
		Starter:   starter,
		Main:      main,
		UpdatedAt: at,
	}
}

// Run executes the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)

	t.Run("Upsert then list returns exact selection", func(t *testing.T) {
		store := newStore(t, "test")

		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Tom", Dish("2"), nil, now)))

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		require.Len(t, day, 1)

		sel := day["Tom"]
		require.NotNil(t, sel)
		assert.Equal(t, "Tom", sel.Person)
		assert.Equal(t, "2026-10-19", sel.Date)
		require.NotNil(t, sel.Starter)
		assert.Equal(t, "2", *sel.Starter)
		assert.Nil(t, sel.Main)
		assert.True(t, sel.UpdatedAt.Equal(now), "updated_at: got %v, want %v", sel.UpdatedAt, now)
	})

	t.Run("Second upsert replaces without merging", func(t *testing.T) {
		store := newStore(t, "test")

		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Tom", Dish("A"), nil, now)))
		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Tom", nil, Dish("B"), now.Add(time.Minute))))

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		require.Len(t, day, 1)
		assert.Nil(t, day["Tom"].Starter)
		require.NotNil(t, day["Tom"].Main)
		assert.Equal(t, "B", *day["Tom"].Main)
	})

	t.Run("Identical upsert is idempotent", func(t *testing.T) {
		store := newStore(t, "test")
		sel := NewSelection("2026-10-19", "Jane", Dish("1"), Dish("4"), now)

		require.NoError(t, store.UpsertSelection(ctx, sel))
		require.NoError(t, store.UpsertSelection(ctx, sel))

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		require.Len(t, day, 1)
		assert.Equal(t, "1", *day["Jane"].Starter)
		assert.Equal(t, "4", *day["Jane"].Main)
	})

	t.Run("List on empty date returns empty mapping", func(t *testing.T) {
		store := newStore(t, "test")

		day, err := store.ListSelections(ctx, "2026-01-01")
		require.NoError(t, err)
		assert.NotNil(t, day)
		assert.Empty(t, day)
	})

	t.Run("Delete clears date and is idempotent", func(t *testing.T) {
		store := newStore(t, "test")

		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Tom", Dish("1"), nil, now)))
		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Jane", nil, Dish("2"), now)))

		require.NoError(t, store.DeleteSelections(ctx, "2026-10-19"))
		require.NoError(t, store.DeleteSelections(ctx, "2026-10-19"))

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Empty(t, day)
	})

	t.Run("Dates are isolated", func(t *testing.T) {
		store := newStore(t, "test")

		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Tom", Dish("1"), nil, now)))
		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-20", "Jane", Dish("2"), nil, now)))

		day, err := store.ListSelections(ctx, "2026-10-20")
		require.NoError(t, err)
		require.Len(t, day, 1)
		assert.Contains(t, day, "Jane")

		require.NoError(t, store.DeleteSelections(ctx, "2026-10-20"))

		day, err = store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Len(t, day, 1, "clearing one date must not touch another")
	})

	t.Run("Environments are isolated", func(t *testing.T) {
		dev := newStore(t, "dev")
		prod := newStore(t, "prod")

		require.NoError(t, dev.UpsertSelection(ctx, NewSelection("2026-10-19", "Tom", Dish("1"), nil, now)))

		day, err := prod.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Empty(t, day)
	})

	t.Run("Updated at never moves backwards", func(t *testing.T) {
		store := newStore(t, "test")

		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Ulrik", Dish("1"), nil, now)))
		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Ulrik", nil, Dish("9"), now.Add(-time.Hour))))

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		sel := day["Ulrik"]
		require.NotNil(t, sel)
		assert.Nil(t, sel.Starter, "fields are still replaced")
		assert.Equal(t, "9", *sel.Main)
		assert.False(t, sel.UpdatedAt.Before(now), "updated_at went backwards: %v", sel.UpdatedAt)
	})

	t.Run("Concurrent upserts for different people all persist", func(t *testing.T) {
		store := newStore(t, "test")
		people := []string{"Simon", "Alison", "Tom", "Jane", "Riona", "Matthew", "Ali", "Karin"}

		var wg sync.WaitGroup
		errs := make(chan error, len(people))
		for i, person := range people {
			wg.Add(1)
			go func(i int, person string) {
				defer wg.Done()
				sel := NewSelection("2026-10-19", person, Dish(fmt.Sprint(i)), nil, now)
				errs <- store.UpsertSelection(ctx, sel)
			}(i, person)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Len(t, day, len(people))
	})

	t.Run("Returned selections are copies", func(t *testing.T) {
		store := newStore(t, "test")

		require.NoError(t, store.UpsertSelection(ctx, NewSelection("2026-10-19", "Finley", Dish("1"), nil, now)))

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		*day["Finley"].Starter = "tampered"

		day, err = store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Equal(t, "1", *day["Finley"].Starter)
	})
}
