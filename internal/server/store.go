// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	fiberRedis "github.com/gofiber/storage/redis/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tugascript/devlogs/dataforge/internal/config"
	"github.com/tugascript/devlogs/dataforge/internal/providers/cache"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database/bolt"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database/dynamo"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database/postgres"
)

// NewStore opens the document store selected by the configured driver and
// prepares its schema.
func NewStore(ctx context.Context, logger *slog.Logger, cfg config.StoreConfig) (database.Store, error) {
	logger = logger.With("driver", cfg.Driver())

	switch cfg.Driver() {
	case config.StoreDriverPostgres:
		logger.InfoContext(ctx, "Building database connection pool...")
		dbConnPool, err := pgxpool.New(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}

		db := postgres.NewDatabase(dbConnPool)
		if err := db.EnsureSchema(ctx); err != nil {
			dbConnPool.Close()
			return nil, err
		}
		logger.InfoContext(ctx, "Finished building database connection pool")
		return db, nil
	case config.StoreDriverBolt:
		logger.InfoContext(ctx, "Opening bolt database...", "path", cfg.BoltPath())
		store, err := bolt.Open(bolt.Options{Path: cfg.BoltPath()})
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "Finished opening bolt database")
		return store, nil
	case config.StoreDriverDynamoDB:
		dynamoCfg := cfg.DynamoDB()
		logger.InfoContext(ctx, "Building DynamoDB client...", "table", dynamoCfg.Table())
		store := dynamo.NewStore(dynamo.NewClient(dynamo.Options{
			Region:          dynamoCfg.Region(),
			Endpoint:        dynamoCfg.Endpoint(),
			AccessKeyID:     dynamoCfg.AccessKeyID(),
			SecretAccessKey: dynamoCfg.SecretAccessKey(),
		}), dynamoCfg.Table())
		if err := store.EnsureTable(ctx); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "Finished building DynamoDB client")
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver())
	}
}

// NewCacheStorage returns the redis storage when a URL is configured and an
// in-process storage otherwise.
func NewCacheStorage(ctx context.Context, logger *slog.Logger, redisURL string) fiber.Storage {
	if redisURL == "" {
		logger.WarnContext(ctx, "REDIS_URL is not set, using in-memory cache storage")
		return cache.NewMemoryStorage()
	}

	logger.InfoContext(ctx, "Building redis storage...")
	storage := fiberRedis.New(fiberRedis.Config{
		URL: redisURL,
	})
	logger.InfoContext(ctx, "Finished building redis storage")
	return storage
}
