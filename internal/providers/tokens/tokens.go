// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tokens

import (
	"log/slog"

	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

type Tokens struct {
	logger    *slog.Logger
	secret    []byte
	issuer    string
	accessTTL int64
}

func NewTokens(
	logger *slog.Logger,
	secret string,
	issuer string,
	accessTTL int64,
) *Tokens {
	return &Tokens{
		logger:    utils.ProviderLogger(logger, "tokens"),
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
	}
}
