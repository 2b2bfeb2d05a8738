package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dinnerpicker/internal/storage"
	"github.com/mmynk/dinnerpicker/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	// Separate instances stand in for separate environments.
	storagetest.Run(t, func(t *testing.T, _ string) storage.Store {
		store := New()
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestMemoryStoreClosed(t *testing.T) {
	store := New()
	require.NoError(t, store.Close())

	_, err := store.ListSelections(context.Background(), "2026-10-19")
	assert.True(t, storage.IsStorageError(err))
	assert.ErrorIs(t, err, storage.ErrClosed)
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	store := New()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Aria", storagetest.Dish("1"), nil, time.Now()))
	assert.True(t, storage.IsStorageError(err))
	assert.ErrorIs(t, err, context.Canceled)
}
