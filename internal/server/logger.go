// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"log/slog"
	"os"

	"github.com/tugascript/devlogs/dataforge/internal/config"
)

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(
		os.Stdout,
		&slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	))
}

func ConfigLogger(cfg config.LoggerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)).With("service", cfg.ServiceName())
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts)).With("service", cfg.ServiceName())
}
