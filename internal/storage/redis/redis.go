// Package redis provides a Redis-backed implementation of the storage.Store
// interface. Each (environment, date) pair is one hash keyed by person.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

const (
	backend = "redis"

	// stampWidth is the zero-padded width of the nanosecond timestamp that
	// prefixes every hash value; fixed width makes string comparison ordered.
	stampWidth = 19
)

// upsertScript replaces a person's entry while keeping the stored timestamp
// non-decreasing. KEYS[1]=day hash, ARGV[1]=person, ARGV[2]=stamp,
// ARGV[3]=json body, ARGV[4]=ttl in ms (0 disables expiry).
var upsertScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[1], ARGV[1])
local stamp = ARGV[2]
if prev then
  local old = string.sub(prev, 1, 19)
  if old > stamp then stamp = old end
end
redis.call('HSET', KEYS[1], ARGV[1], stamp .. '|' .. ARGV[3])
local ttl = tonumber(ARGV[4])
if ttl > 0 then redis.call('PEXPIRE', KEYS[1], ttl) end
return 1
`)

// Ensure RedisStore implements storage.Store
var _ storage.Store = (*RedisStore)(nil)

// Options tunes key layout and retention.
type Options struct {
	// Prefix namespaces every key. Default: "dinner".
	Prefix string
	// TTL expires a day's hash after its last write. Zero keeps it forever.
	TTL time.Duration
}

// RedisStore implements storage.Store on a Redis server.
type RedisStore struct {
	client      redis.UniversalClient
	environment string
	opts        Options
}

// record is the JSON body stored after the timestamp prefix.
type record struct {
	Starter *string `json:"starter"`
	Main    *string `json:"main"`
}

// New wraps an existing client. The caller owns client unless Close is used.
func New(client redis.UniversalClient, environment string, opts Options) *RedisStore {
	if opts.Prefix == "" {
		opts.Prefix = "dinner"
	}
	return &RedisStore{client: client, environment: environment, opts: opts}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int, environment string, opts Options) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return New(client, environment, opts), nil
}

func (s *RedisStore) dayKey(date string) string {
	return fmt.Sprintf("%s:%s:selections:%s", s.opts.Prefix, s.environment, date)
}

// UpsertSelection atomically replaces the person's entry in the day hash.
func (s *RedisStore) UpsertSelection(ctx context.Context, sel *models.Selection) error {
	body, err := json.Marshal(record{Starter: sel.Starter, Main: sel.Main})
	if err != nil {
		return storage.Wrap(backend, "encode selection", err)
	}

	stamp := fmt.Sprintf("%0*d", stampWidth, sel.UpdatedAt.UnixNano())
	err = upsertScript.Run(ctx, s.client,
		[]string{s.dayKey(sel.Date)},
		sel.Person, stamp, string(body), s.opts.TTL.Milliseconds(),
	).Err()
	if err != nil {
		return storage.Wrap(backend, "upsert selection", err)
	}
	return nil
}

// ListSelections reads the whole day hash in one round trip.
func (s *RedisStore) ListSelections(ctx context.Context, date string) (models.DaySelections, error) {
	entries, err := s.client.HGetAll(ctx, s.dayKey(date)).Result()
	if err != nil {
		return nil, storage.Wrap(backend, "list selections", err)
	}

	day := make(models.DaySelections, len(entries))
	for person, value := range entries {
		sel, err := decode(date, person, value)
		if err != nil {
			return nil, storage.Wrap(backend, "decode selection", err)
		}
		day[person] = sel
	}
	return day, nil
}

// DeleteSelections removes the day hash.
func (s *RedisStore) DeleteSelections(ctx context.Context, date string) error {
	if err := s.client.Del(ctx, s.dayKey(date)).Err(); err != nil {
		return storage.Wrap(backend, "delete selections", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decode(date, person, value string) (*models.Selection, error) {
	stamp, body, ok := strings.Cut(value, "|")
	if !ok || len(stamp) != stampWidth {
		return nil, fmt.Errorf("malformed entry for %q", person)
	}
	nanos, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp for %q: %w", person, err)
	}

	var rec record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("bad body for %q: %w", person, err)
	}

	return &models.Selection{
		Date:      date,
		Person:    person,
		Starter:   rec.Starter,
		Main:      rec.Main,
		UpdatedAt: time.Unix(0, nanos),
	}, nil
}
