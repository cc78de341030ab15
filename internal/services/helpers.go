// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

func (s *Services) buildLogger(requestID, location, function string) *slog.Logger {
	return utils.BuildLogger(s.logger, utils.LoggerOptions{
		Location:  location,
		Method:    function,
		RequestID: requestID,
	})
}

func extractAuthHeaderToken(ah string) (string, *exceptions.ServiceError) {
	if ah == "" {
		return "", exceptions.NewUnauthorizedError()
	}

	ahSlice := strings.Split(strings.TrimSpace(ah), " ")
	if len(ahSlice) != 2 {
		return "", exceptions.NewUnauthorizedError()
	}
	if utils.Lowered(ahSlice[0]) != "bearer" {
		return "", exceptions.NewUnauthorizedError()
	}

	return ahSlice[1], nil
}

// parseID reads a table or record identifier. Malformed identifiers can never
// match a stored entity, so they are reported as not found.
func parseID(id string, notFound func() *exceptions.ServiceError) (uuid.UUID, *exceptions.ServiceError) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, notFound()
	}
	return parsed, nil
}

func joinErrors(errs []string) string {
	return strings.Join(errs, " ")
}
