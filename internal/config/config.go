// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends selectable with DINNER_STORAGE.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StorageDynamoDB = "dynamodb"
)

var storageBackends = []string{StorageMemory, StorageSQLite, StorageRedis, StorageDynamoDB}

// Config is the full server configuration.
type Config struct {
	Port int `env:"PORT" envDefault:"3000"`

	// Password is the shared household secret. PasswordHash, when set, is a
	// bcrypt hash that takes precedence so the plain secret need not be deployed.
	Password     string        `env:"DINNER_PASSWORD" envDefault:"family2024"`
	PasswordHash string        `env:"DINNER_PASSWORD_HASH"`
	JWTSecret    string        `env:"DINNER_JWT_SECRET"`
	SessionTTL   time.Duration `env:"DINNER_SESSION_TTL" envDefault:"24h"`

	// Environment partitions stored data, e.g. dev and prod sharing one backend.
	Environment string `env:"DINNER_ENV" envDefault:"dev"`
	Timezone    string `env:"DINNER_TIMEZONE" envDefault:"UTC"`

	Storage       string        `env:"DINNER_STORAGE" envDefault:"memory"`
	DBPath        string        `env:"DINNER_DB_PATH" envDefault:"./data/dinner.db"`
	RedisAddr     string        `env:"DINNER_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"DINNER_REDIS_PASSWORD"`
	RedisDB       int           `env:"DINNER_REDIS_DB" envDefault:"0"`
	// RedisTTL expires a day's selections after its last write. Zero keeps them.
	RedisTTL      time.Duration `env:"DINNER_REDIS_TTL" envDefault:"0s"`
	DynamoTable   string        `env:"DINNER_DYNAMO_TABLE" envDefault:"dinner_selections"`
	// DynamoEndpoint points at DynamoDB Local; the table is created on startup when set.
	DynamoEndpoint string `env:"DINNER_DYNAMO_ENDPOINT"`

	StaticPath string `env:"DINNER_STATIC_PATH" envDefault:"./public"`
	LogLevel   string `env:"DINNER_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"DINNER_LOG_FORMAT" envDefault:"text"`
	Metrics    bool   `env:"DINNER_METRICS" envDefault:"true"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(env.Options{})
}

// Parse builds a Config from the process environment, or from opts.Environment
// when set.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if !slices.Contains(storageBackends, c.Storage) {
		return fmt.Errorf("unknown storage backend %q (want one of %v)", c.Storage, storageBackends)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Password == "" && c.PasswordHash == "" {
		return errors.New("DINNER_PASSWORD or DINNER_PASSWORD_HASH must be set")
	}
	if c.RedisTTL < 0 {
		return fmt.Errorf("invalid DINNER_REDIS_TTL %s", c.RedisTTL)
	}
	if c.Environment == "" {
		return errors.New("DINNER_ENV must not be empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}
