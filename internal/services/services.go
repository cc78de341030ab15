// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"log/slog"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/accesskeys"
	"github.com/tugascript/devlogs/dataforge/internal/providers/cache"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
)

type Services struct {
	logger     *slog.Logger
	database   database.Store
	cache      *cache.Cache
	accessKeys *accesskeys.AccessKeys
	jwt        *tokens.Tokens
	queryOpts  engine.QueryOptions
}

func NewServices(
	logger *slog.Logger,
	database database.Store,
	cache *cache.Cache,
	accessKeys *accesskeys.AccessKeys,
	jwt *tokens.Tokens,
	strictQueryJSON bool,
) *Services {
	return &Services{
		logger:     logger,
		database:   database,
		cache:      cache,
		accessKeys: accessKeys,
		jwt:        jwt,
		queryOpts:  engine.QueryOptions{StrictJSON: strictQueryJSON},
	}
}
