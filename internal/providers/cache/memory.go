// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
)

const memoryGCInterval = 10 * time.Second

// NewMemoryStorage is the in process fiber.Storage used when no Redis URL is
// configured. Expired entries are swept every memoryGCInterval.
func NewMemoryStorage() fiber.Storage {
	return memory.New(memory.Config{GCInterval: memoryGCInterval})
}
