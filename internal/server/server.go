// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/config"
	"github.com/tugascript/devlogs/dataforge/internal/controllers"
	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/accesskeys"
	"github.com/tugascript/devlogs/dataforge/internal/providers/cache"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
	"github.com/tugascript/devlogs/dataforge/internal/server/routes"
	"github.com/tugascript/devlogs/dataforge/internal/server/validations"
	"github.com/tugascript/devlogs/dataforge/internal/services"
)

const appName string = "dataforge"

type FiberServer struct {
	*fiber.App
	routes  *routes.Routes
	store   database.Store
	storage fiber.Storage
}

// Options holds the built providers a server runs on.
type Options struct {
	Store            database.Store
	Storage          fiber.Storage
	TableCacheTTLSec int64
	AccessKeys       *accesskeys.AccessKeys
	Tokens           *tokens.Tokens
	StrictQueryJSON  bool
	RateLimiter      config.RateLimiterConfig
}

func New(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
) *FiberServer {
	cacheStorage := NewCacheStorage(ctx, logger, cfg.RedisURL())

	store, err := NewStore(ctx, logger, cfg.StoreConfig())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build document store", "error", err)
		panic(err)
	}

	logger.InfoContext(ctx, "Building access keys...")
	akCfg := cfg.AccessKeysConfig()
	accessKeys, err := accesskeys.NewAccessKeys(logger, akCfg.Mode(), akCfg.Secret())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build access keys", "error", err)
		panic(err)
	}
	logger.InfoContext(ctx, "Finished building access keys", "mode", accessKeys.Mode())

	logger.InfoContext(ctx, "Building JWT tokens...")
	tokensCfg := cfg.TokensConfig()
	jwts := tokens.NewTokens(logger, tokensCfg.Secret(), tokensCfg.Issuer(), tokensCfg.AccessTTLSec())
	logger.InfoContext(ctx, "Finished building JWT tokens")

	return Build(ctx, logger, Options{
		Store:            store,
		Storage:          cacheStorage,
		TableCacheTTLSec: cfg.TableCacheTTLSec(),
		AccessKeys:       accessKeys,
		Tokens:           jwts,
		StrictQueryJSON:  cfg.StrictQueryJSON(),
		RateLimiter:      cfg.RateLimiterConfig(),
	})
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return ctx.Status(fiberErr.Code).JSON(exceptions.ErrorResponse{Message: fiberErr.Message})
		}

		logger.ErrorContext(ctx.UserContext(), "Unhandled request error", "error", err)
		return ctx.
			Status(fiber.StatusInternalServerError).
			JSON(exceptions.NewErrorResponse(exceptions.NewServerError()))
	}
}

// Build assembles the services, controllers and middleware on top of already
// built providers.
func Build(ctx context.Context, logger *slog.Logger, opts Options) *FiberServer {
	cc := cache.NewCache(logger, opts.Storage, opts.TableCacheTTLSec)

	logger.InfoContext(ctx, "Building services...")
	newServices := services.NewServices(
		logger,
		opts.Store,
		cc,
		opts.AccessKeys,
		opts.Tokens,
		opts.StrictQueryJSON,
	)
	logger.InfoContext(ctx, "Finished building services")

	logger.InfoContext(ctx, "Loading validators...")
	vld := validations.NewValidator(logger)
	logger.InfoContext(ctx, "Finished loading validators")

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: appName,
			AppName:      appName,
			ErrorHandler: errorHandler(logger),
		}),
		routes:  routes.NewRoutes(controllers.NewControllers(logger, newServices, vld)),
		store:   opts.Store,
		storage: opts.Storage,
	}

	logger.InfoContext(ctx, "Loading middleware...")
	server.Use(recover.New())
	server.Use(helmet.New())
	server.Use(requestid.New(requestid.Config{
		Header: fiber.HeaderXRequestID,
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	if opts.RateLimiter.Enabled() {
		server.Use(limiter.New(limiter.Config{
			Max:               int(opts.RateLimiter.Max()),
			Expiration:        opts.RateLimiter.Expiration(),
			LimiterMiddleware: limiter.SlidingWindow{},
			Storage:           opts.Storage,
		}))
	}
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodPatch,
			fiber.MethodDelete,
			fiber.MethodOptions,
			fiber.MethodHead,
		}, ","),
		AllowHeaders:     "Accept,Authorization,Content-Type," + services.AccessKeyHeader,
		AllowCredentials: false,
		MaxAge:           300,
	}))
	logger.InfoContext(ctx, "Finished loading common middlewares")

	return server
}

// Close releases the document store and the cache storage.
func (s *FiberServer) Close() error {
	return errors.Join(s.store.Close(), s.storage.Close())
}
