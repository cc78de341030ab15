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

func (r *Routes) TablesRoutes(app *fiber.App) {
	router := v1PathRouter(app).Group(paths.TablesBase, r.controllers.AccessClaimsMiddleware)

	router.Post(paths.Base, r.controllers.CreateTable)
	router.Get(paths.Base, r.controllers.ListTables)
	router.Get(paths.TablesSingle, r.controllers.GetTable)
	router.Put(paths.TablesSingle, r.controllers.UpdateTable)
	router.Delete(paths.TablesSingle, r.controllers.DeleteTable)
	router.Get(paths.TablesAccessKeys, r.controllers.GetTableAccessKeys)
}
