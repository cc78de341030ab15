// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tugascript/devlogs/dataforge/internal/controllers/paths"
)

func (r *Routes) HealthRoutes(app *fiber.App) {
	app.Get(paths.Health, r.controllers.HealthCheck)
}
