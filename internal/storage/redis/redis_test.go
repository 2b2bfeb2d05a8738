package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dinnerpicker/internal/storage"
	"github.com/mmynk/dinnerpicker/internal/storage/storagetest"
)

// newMiniredis starts an in-process server that also runs Lua scripts.
func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	clients := make(map[*testing.T]*redis.Client)
	storagetest.Run(t, func(t *testing.T, environment string) storage.Store {
		client, ok := clients[t]
		if !ok {
			_, client = newMiniredis(t)
			clients[t] = client
		}
		return New(client, environment, Options{})
	})
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sel := storagetest.NewSelection("2026-10-19", "Tom", storagetest.Dish("1"), nil, at)

	t.Run("no ttl keeps data", func(t *testing.T) {
		mr, client := newMiniredis(t)
		store := New(client, "prod", Options{})
		require.NoError(t, store.UpsertSelection(ctx, sel))

		assert.Zero(t, mr.TTL(store.dayKey("2026-10-19")))
		mr.FastForward(365 * 24 * time.Hour)

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Len(t, day, 1)
	})

	t.Run("ttl expires the day", func(t *testing.T) {
		mr, client := newMiniredis(t)
		store := New(client, "prod", Options{TTL: time.Hour})
		require.NoError(t, store.UpsertSelection(ctx, sel))

		assert.Equal(t, time.Hour, mr.TTL(store.dayKey("2026-10-19")))
		mr.FastForward(2 * time.Hour)

		day, err := store.ListSelections(ctx, "2026-10-19")
		require.NoError(t, err)
		assert.Empty(t, day)
	})
}

func TestRedisStoreKeepsNewerStamp(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniredis(t)
	store := New(client, "prod", Options{})
	later := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", storagetest.Dish("1"), nil, later)))
	require.NoError(t, store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", nil, storagetest.Dish("4"), later.Add(-time.Hour))))

	day, err := store.ListSelections(ctx, "2026-10-19")
	require.NoError(t, err)
	tom := day["Tom"]
	require.NotNil(t, tom)
	assert.True(t, tom.UpdatedAt.Equal(later))
	assert.Nil(t, tom.Starter)
	require.NotNil(t, tom.Main)
	assert.Equal(t, "4", *tom.Main)
}

// TestRedisStoreLive runs the suite against a real server; set
// DINNER_TEST_REDIS_ADDR to enable it.
func TestRedisStoreLive(t *testing.T) {
	addr := os.Getenv("DINNER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DINNER_TEST_REDIS_ADDR not set")
	}

	prefixes := make(map[*testing.T]string)
	storagetest.Run(t, func(t *testing.T, environment string) storage.Store {
		prefix, ok := prefixes[t]
		if !ok {
			prefix = "dinnertest-" + uuid.NewString()
			prefixes[t] = prefix
		}

		client := redis.NewClient(&redis.Options{Addr: addr})
		require.NoError(t, client.Ping(context.Background()).Err())

		store := New(client, environment, Options{Prefix: prefix})
		t.Cleanup(func() {
			keys, _ := client.Keys(context.Background(), prefix+":*").Result()
			if len(keys) > 0 {
				client.Del(context.Background(), keys...)
			}
			store.Close()
		})
		return store
	})
}

func TestDecode(t *testing.T) {
	sel, err := decode("2026-10-19", "Tom", `1760900000000000000|{"starter":"2","main":null}`)
	require.NoError(t, err)
	assert.Equal(t, "Tom", sel.Person)
	require.NotNil(t, sel.Starter)
	assert.Equal(t, "2", *sel.Starter)
	assert.Nil(t, sel.Main)
	assert.Equal(t, int64(1760900000000000000), sel.UpdatedAt.UnixNano())

	_, err = decode("2026-10-19", "Tom", "garbage")
	assert.Error(t, err)

	_, err = decode("2026-10-19", "Tom", strings.Repeat("x", stampWidth)+"|{}")
	assert.Error(t, err)
}

func TestDayKey(t *testing.T) {
	store := New(nil, "prod", Options{})
	assert.Equal(t, "dinner:prod:selections:2026-10-19", store.dayKey("2026-10-19"))
}
