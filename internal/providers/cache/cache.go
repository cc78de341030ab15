// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

type redisConn interface {
	Conn() redis.UniversalClient
}

type Cache struct {
	logger   *slog.Logger
	storage  fiber.Storage
	tableTTL time.Duration
}

func NewCache(
	logger *slog.Logger,
	storage fiber.Storage,
	tableTTL int64,
) *Cache {
	return &Cache{
		logger:   utils.ProviderLogger(logger, "cache"),
		storage:  storage,
		tableTTL: utils.ToSecondsDuration(tableTTL),
	}
}

func (c *Cache) ResetCache() error {
	return c.storage.Reset()
}

// Storage exposes the underlying storage, shared with the rate limiter.
func (c *Cache) Storage() fiber.Storage {
	return c.storage
}

func (c *Cache) Ping(ctx context.Context) error {
	if conn, ok := c.storage.(redisConn); ok {
		return conn.Conn().Ping(ctx).Err()
	}

	_, err := c.storage.Get("ping")
	return err
}
