// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

const (
	tablesLocation string = "tables"

	tablePrefix string = "table"
)

type cachedTable struct {
	ID        uuid.UUID      `json:"id"`
	OwnerID   string         `json:"ownerId"`
	Name      string         `json:"name"`
	Fields    []engine.Field `json:"fields"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func tableKey(ownerID string, tableID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", tablePrefix, ownerID, tableID.String())
}

type AddTableOptions struct {
	RequestID string
	Table     database.Table
}

// AddTable caches the schema of a live table for the dynamic endpoints.
func (c *Cache) AddTable(ctx context.Context, opts AddTableOptions) error {
	logger := utils.BuildLogger(c.logger, utils.LoggerOptions{
		Location:  tablesLocation,
		Method:    "AddTable",
		RequestID: opts.RequestID,
	}).With("tableId", opts.Table.ID)
	logger.DebugContext(ctx, "Adding table...")

	tableBytes, err := json.Marshal(cachedTable{
		ID:        opts.Table.ID,
		OwnerID:   opts.Table.OwnerID,
		Name:      opts.Table.Name,
		Fields:    opts.Table.Fields,
		CreatedAt: opts.Table.CreatedAt,
		UpdatedAt: opts.Table.UpdatedAt,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Error marshalling table", "error", err)
		return err
	}

	if err := c.storage.Set(tableKey(opts.Table.OwnerID, opts.Table.ID), tableBytes, c.tableTTL); err != nil {
		logger.ErrorContext(ctx, "Error adding table", "error", err)
		return err
	}

	return nil
}

type GetTableOptions struct {
	RequestID string
	OwnerID   string
	TableID   uuid.UUID
}

func (c *Cache) GetTable(ctx context.Context, opts GetTableOptions) (database.Table, bool, error) {
	logger := utils.BuildLogger(c.logger, utils.LoggerOptions{
		Location:  tablesLocation,
		Method:    "GetTable",
		RequestID: opts.RequestID,
	}).With("tableId", opts.TableID)
	logger.DebugContext(ctx, "Getting table...")

	tableBytes, err := c.storage.Get(tableKey(opts.OwnerID, opts.TableID))
	if err != nil {
		logger.ErrorContext(ctx, "Error getting table", "error", err)
		return database.Table{}, false, err
	}
	if tableBytes == nil {
		logger.DebugContext(ctx, "Table not cached")
		return database.Table{}, false, nil
	}

	var cached cachedTable
	if err := json.Unmarshal(tableBytes, &cached); err != nil {
		logger.ErrorContext(ctx, "Error unmarshalling table", "error", err)
		return database.Table{}, false, err
	}

	return database.Table{
		ID:        cached.ID,
		OwnerID:   cached.OwnerID,
		Name:      cached.Name,
		Fields:    cached.Fields,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, true, nil
}

type DeleteTableOptions struct {
	RequestID string
	OwnerID   string
	TableID   uuid.UUID
}

func (c *Cache) DeleteTable(ctx context.Context, opts DeleteTableOptions) error {
	logger := utils.BuildLogger(c.logger, utils.LoggerOptions{
		Location:  tablesLocation,
		Method:    "DeleteTable",
		RequestID: opts.RequestID,
	}).With("tableId", opts.TableID)
	logger.DebugContext(ctx, "Deleting table...")

	if err := c.storage.Delete(tableKey(opts.OwnerID, opts.TableID)); err != nil {
		logger.ErrorContext(ctx, "Error deleting table", "error", err)
		return err
	}

	return nil
}
