// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"context"
	"time"

	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
)

const (
	healthLocation string = "health"

	pingTimeout time.Duration = 2 * time.Second
)

// HealthCheck pings the document store and the table cache, each bounded by
// its own timeout.
func (s *Services) HealthCheck(ctx context.Context, requestID string) *exceptions.ServiceError {
	logger := s.buildLogger(requestID, healthLocation, "HealthCheck")
	logger.InfoContext(ctx, "Performing health check...")

	for _, dep := range [...]struct {
		name string
		ping func(context.Context) error
	}{
		{name: "store", ping: s.database.Ping},
		{name: "cache", ping: s.cache.Ping},
	} {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := dep.ping(pingCtx)
		cancel()
		if err != nil {
			logger.ErrorContext(ctx, "Dependency is unhealthy", "dependency", dep.name, "error", err)
			return exceptions.NewServerError()
		}
	}

	logger.InfoContext(ctx, "Service is healthy")
	return nil
}
