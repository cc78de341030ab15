// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/cache"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/services/dtos"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

const (
	tablesLocation string = "tables"

	MessageTableDeleted string = "Table and related data have been successfully deleted."
)

type CreateTableOptions struct {
	RequestID string
	OwnerID   string
	Name      string
	Fields    []engine.Field
}

func (s *Services) CreateTable(
	ctx context.Context,
	opts CreateTableOptions,
) (dtos.TableDTO, *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, tablesLocation, "CreateTable").With(
		"ownerId", opts.OwnerID,
	)
	logger.InfoContext(ctx, "Creating table...")

	if errs := engine.ValidateFields(opts.Fields); len(errs) > 0 {
		logger.WarnContext(ctx, "Invalid table fields", "errors", errs)
		return dtos.TableDTO{}, exceptions.NewValidationError(joinErrors(errs))
	}

	table, err := s.database.CreateTable(ctx, database.CreateTableParams{
		OwnerID: opts.OwnerID,
		Name:    opts.Name,
		Fields:  opts.Fields,
	})
	if err != nil {
		if errors.Is(err, database.ErrTableNameTaken) {
			logger.InfoContext(ctx, "Table name already taken", "name", opts.Name)
		} else {
			logger.ErrorContext(ctx, "Failed to create table", "error", err)
		}
		return dtos.TableDTO{}, exceptions.FromDBError(err)
	}

	s.cacheTable(ctx, logger, opts.RequestID, table)
	logger.InfoContext(ctx, "Table created successfully", "tableId", table.ID)
	return dtos.MapTableToDTO(&table), nil
}

type ListTablesOptions struct {
	RequestID string
	OwnerID   string
}

func (s *Services) ListTables(
	ctx context.Context,
	opts ListTablesOptions,
) ([]dtos.TableDTO, *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, tablesLocation, "ListTables").With(
		"ownerId", opts.OwnerID,
	)
	logger.InfoContext(ctx, "Listing tables...")

	tables, err := s.database.ListTablesByOwnerID(ctx, opts.OwnerID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tables", "error", err)
		return nil, exceptions.FromDBError(err)
	}

	logger.InfoContext(ctx, "Tables listed successfully", "count", len(tables))
	return utils.MapSlice(tables, dtos.MapTableToDTO), nil
}

type GetTableOptions struct {
	RequestID string
	OwnerID   string
	TableID   string
}

// GetTable resolves a live table of the owner, reading through the schema
// cache.
func (s *Services) GetTable(
	ctx context.Context,
	opts GetTableOptions,
) (dtos.TableDTO, *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, tablesLocation, "GetTable").With(
		"ownerId", opts.OwnerID,
		"tableId", opts.TableID,
	)
	logger.InfoContext(ctx, "Getting table...")

	table, serviceErr := s.resolveTable(ctx, logger, opts)
	if serviceErr != nil {
		return dtos.TableDTO{}, serviceErr
	}

	logger.InfoContext(ctx, "Table found")
	return dtos.MapTableToDTO(&table), nil
}

func (s *Services) resolveTable(
	ctx context.Context,
	logger *slog.Logger,
	opts GetTableOptions,
) (database.Table, *exceptions.ServiceError) {
	tableID, serviceErr := parseID(opts.TableID, exceptions.NewTableNotFoundError)
	if serviceErr != nil {
		logger.InfoContext(ctx, "Malformed table id")
		return database.Table{}, serviceErr
	}

	table, ok, err := s.cache.GetTable(ctx, cache.GetTableOptions{
		RequestID: opts.RequestID,
		OwnerID:   opts.OwnerID,
		TableID:   tableID,
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to read cached table, falling back to the store", "error", err)
	}
	if ok {
		logger.DebugContext(ctx, "Table cache hit")
		return table, nil
	}

	table, err = s.database.FindTableByIDAndOwnerID(ctx, tableID, opts.OwnerID)
	if err != nil {
		serviceErr := exceptions.FromDBError(err)
		if serviceErr.Code == exceptions.CodeNotFound {
			logger.InfoContext(ctx, "Table not found")
			return database.Table{}, exceptions.NewTableNotFoundError()
		}

		logger.ErrorContext(ctx, "Failed to find table", "error", err)
		return database.Table{}, serviceErr
	}

	s.cacheTable(ctx, logger, opts.RequestID, table)
	return table, nil
}

func (s *Services) cacheTable(ctx context.Context, logger *slog.Logger, requestID string, table database.Table) {
	if err := s.cache.AddTable(ctx, cache.AddTableOptions{
		RequestID: requestID,
		Table:     table,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to cache table", "error", err)
	}
}

func (s *Services) evictTable(ctx context.Context, logger *slog.Logger, requestID, ownerID string, tableID uuid.UUID) {
	if err := s.cache.DeleteTable(ctx, cache.DeleteTableOptions{
		RequestID: requestID,
		OwnerID:   ownerID,
		TableID:   tableID,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to evict cached table", "error", err)
	}
}

type UpdateTableOptions struct {
	RequestID string
	OwnerID   string
	TableID   string
	Name      string
	Fields    []engine.Field
}

func (s *Services) UpdateTable(
	ctx context.Context,
	opts UpdateTableOptions,
) (dtos.TableDTO, *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, tablesLocation, "UpdateTable").With(
		"ownerId", opts.OwnerID,
		"tableId", opts.TableID,
	)
	logger.InfoContext(ctx, "Updating table...")

	tableID, serviceErr := parseID(opts.TableID, exceptions.NewTableNotFoundError)
	if serviceErr != nil {
		logger.InfoContext(ctx, "Malformed table id")
		return dtos.TableDTO{}, serviceErr
	}
	if errs := engine.ValidateFields(opts.Fields); len(errs) > 0 {
		logger.WarnContext(ctx, "Invalid table fields", "errors", errs)
		return dtos.TableDTO{}, exceptions.NewValidationError(joinErrors(errs))
	}

	// Evicting after the write too drops a stale copy that a concurrent read
	// cached while the write was in flight.
	s.evictTable(ctx, logger, opts.RequestID, opts.OwnerID, tableID)
	defer s.evictTable(ctx, logger, opts.RequestID, opts.OwnerID, tableID)
	table, err := s.database.UpdateTable(ctx, database.UpdateTableParams{
		ID:      tableID,
		OwnerID: opts.OwnerID,
		Name:    opts.Name,
		Fields:  opts.Fields,
	})
	if err != nil {
		serviceErr := exceptions.FromDBError(err)
		switch serviceErr.Code {
		case exceptions.CodeNotFound:
			logger.InfoContext(ctx, "Table not found")
			return dtos.TableDTO{}, exceptions.NewTableNotFoundError()
		case exceptions.CodeConflict, exceptions.CodeValidation:
			logger.InfoContext(ctx, "Table update rejected", "error", err)
		default:
			logger.ErrorContext(ctx, "Failed to update table", "error", err)
		}
		return dtos.TableDTO{}, serviceErr
	}

	logger.InfoContext(ctx, "Table updated successfully")
	return dtos.MapTableToDTO(&table), nil
}

type DeleteTableOptions struct {
	RequestID string
	OwnerID   string
	TableID   string
}

// DeleteTable soft deletes a table and every record of it.
func (s *Services) DeleteTable(
	ctx context.Context,
	opts DeleteTableOptions,
) *exceptions.ServiceError {
	logger := s.buildLogger(opts.RequestID, tablesLocation, "DeleteTable").With(
		"ownerId", opts.OwnerID,
		"tableId", opts.TableID,
	)
	logger.InfoContext(ctx, "Deleting table...")

	tableID, serviceErr := parseID(opts.TableID, exceptions.NewTableNotFoundError)
	if serviceErr != nil {
		logger.InfoContext(ctx, "Malformed table id")
		return serviceErr
	}

	s.evictTable(ctx, logger, opts.RequestID, opts.OwnerID, tableID)
	defer s.evictTable(ctx, logger, opts.RequestID, opts.OwnerID, tableID)
	count, err := s.database.DeleteTable(ctx, tableID, opts.OwnerID)
	if err != nil {
		serviceErr := exceptions.FromDBError(err)
		if serviceErr.Code == exceptions.CodeNotFound {
			logger.InfoContext(ctx, "Table not found")
			return exceptions.NewTableNotFoundError()
		}

		logger.ErrorContext(ctx, "Failed to delete table", "error", err)
		return serviceErr
	}

	logger.InfoContext(ctx, "Table and records deleted successfully", "recordCount", count)
	return nil
}
