// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package controllers

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/tugascript/devlogs/dataforge/internal/services"
)

type Controllers struct {
	logger   *slog.Logger
	services *services.Services
	validate *validator.Validate
}

func NewControllers(
	logger *slog.Logger,
	services *services.Services,
	validate *validator.Validate,
) *Controllers {
	return &Controllers{
		logger:   logger,
		services: services,
		validate: validate,
	}
}
