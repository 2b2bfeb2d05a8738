package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/dinnerpicker/internal/config"
	"github.com/mmynk/dinnerpicker/internal/storage"
	"github.com/mmynk/dinnerpicker/internal/storage/dynamo"
	"github.com/mmynk/dinnerpicker/internal/storage/memory"
	"github.com/mmynk/dinnerpicker/internal/storage/redis"
	"github.com/mmynk/dinnerpicker/internal/storage/sqlite"
)

// OpenStore builds the storage backend named by cfg.Storage.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn("Using in-memory storage, selections are lost on restart", "environment", cfg.Environment)
		return memory.New(), nil

	case config.StorageSQLite:
		store, err := sqlite.New(cfg.DBPath, cfg.Environment)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.Storage, "database", cfg.DBPath)
		return store, nil

	case config.StorageRedis:
		store, err := redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Environment, redis.Options{TTL: cfg.RedisTTL})
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.Storage, "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store, nil

	case config.StorageDynamoDB:
		store, err := dynamo.Connect(ctx, cfg.DynamoTable, cfg.DynamoEndpoint, cfg.Environment)
		if err != nil {
			return nil, err
		}
		if cfg.DynamoEndpoint != "" {
			if err := store.EnsureTable(ctx); err != nil {
				return nil, err
			}
		}
		slog.Info("Storage initialized", "backend", cfg.Storage, "table", cfg.DynamoTable)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
