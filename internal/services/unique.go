// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

type checkUniquenessOptions struct {
	tableID         uuid.UUID
	fields          []engine.Field
	payload         *engine.Payload
	excludeRecordID uuid.UUID
}

// checkUniqueness reports every primary field of the payload whose value is
// already held by another live record of the table. The store enforces the
// same rule when writing, this check only produces the aggregated message.
func (s *Services) checkUniqueness(
	ctx context.Context,
	logger *slog.Logger,
	opts checkUniquenessOptions,
) *exceptions.ServiceError {
	errs := make([]string, 0)

	for _, uv := range engine.UniqueValues(opts.fields, opts.payload) {
		exists, err := s.database.ExistsLiveValue(ctx, database.ExistsLiveValueParams{
			TableID:         opts.tableID,
			FieldKey:        uv.FieldKey,
			Value:           uv.Value,
			ExcludeRecordID: opts.excludeRecordID,
		})
		if err != nil {
			logger.ErrorContext(ctx, "Failed to check unique value", "fieldKey", uv.FieldKey, "error", err)
			return exceptions.FromDBError(err)
		}
		if exists {
			errs = append(errs, database.NewUniqueViolationError(uv).Error())
		}
	}

	if len(errs) > 0 {
		logger.InfoContext(ctx, "Unique values already taken", "errors", errs)
		return exceptions.NewValidationError(joinErrors(errs))
	}

	return nil
}
