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

// RecordsRoutes registers the dynamic endpoints of every table. The access key
// is checked before the method so unsupported methods still require one.
func (r *Routes) RecordsRoutes(app *fiber.App) {
	router := apiPathRouter(app).Group(paths.RecordsBase)
	accessKey := r.controllers.AccessKeyMiddleware

	router.Get(paths.Base, accessKey, r.controllers.ListRecords)
	router.Post(paths.Base, accessKey, r.controllers.CreateRecord)
	router.All(paths.Base, accessKey, r.controllers.RecordsMethodNotAllowed)

	router.Get(paths.RecordsSingle, accessKey, r.controllers.GetRecord)
	router.Put(paths.RecordsSingle, accessKey, r.controllers.UpdateRecord)
	router.Patch(paths.RecordsSingle, accessKey, r.controllers.PatchRecord)
	router.Delete(paths.RecordsSingle, accessKey, r.controllers.DeleteRecord)
	router.All(paths.RecordsSingle, accessKey, r.controllers.RecordMethodNotAllowed)
}
