// Package persistence selects a snapshot gateway from configuration.
package persistence

import (
	"context"
	"fmt"

	"frontdesk/internal/config"
	"frontdesk/internal/infra/blob"
	"frontdesk/internal/infra/persistence/blobsnap"
	"frontdesk/internal/infra/persistence/memory"
	"frontdesk/internal/infra/persistence/postgres"
	"frontdesk/internal/infra/persistence/redis"
	"frontdesk/internal/infra/persistence/sqlite"
	"frontdesk/pkg/domain"
)

// CloseFunc releases resources held by a gateway.
type CloseFunc func() error

func noClose() error { return nil }

// Open builds the gateway named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config) (domain.Gateway, CloseFunc, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory.New(), noClose, nil
	case config.StorageSQLite, "":
		g, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case config.StoragePostgres:
		g, err := postgres.Open(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case config.StorageRedis:
		g, err := redis.Open(ctx, redis.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case config.StorageBlob:
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, nil, err
		}
		return blobsnap.New(store, cfg.Blob.SnapshotKey), noClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
