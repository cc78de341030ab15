// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/accesskeys"
	"github.com/tugascript/devlogs/dataforge/internal/providers/cache"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database/bolt"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
)

// racingStore runs beforeWrite ahead of every table write, standing in for a
// request that reads the table while the write is in flight.
type racingStore struct {
	database.Store
	beforeWrite func()
}

func (r *racingStore) UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	return r.Store.UpdateTable(ctx, arg)
}

func (r *racingStore) DeleteTable(ctx context.Context, id uuid.UUID, ownerID string) (int64, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	return r.Store.DeleteTable(ctx, id, ownerID)
}

func newTestServices(t *testing.T) (*Services, *racingStore) {
	t.Helper()

	logger := slog.Default()
	store, err := bolt.Open(bolt.Options{
		Path:      filepath.Join(t.TempDir(), "dataforge.db"),
		IsTesting: true,
	})
	if err != nil {
		t.Fatal("Failed to open bolt store", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Log("Failed to close bolt store", err)
		}
	})

	accessKeys, err := accesskeys.NewAccessKeys(logger, accesskeys.ModeLegacy, "")
	if err != nil {
		t.Fatal("Failed to build access keys", err)
	}

	racing := &racingStore{Store: store}
	srvs := NewServices(
		logger,
		racing,
		cache.NewCache(logger, cache.NewMemoryStorage(), 60),
		accessKeys,
		tokens.NewTokens(logger, "services-test-secret", "", 900),
		true,
	)
	return srvs, racing
}

func usersFields() []engine.Field {
	return []engine.Field{
		{Key: "email", Name: "Email", DataType: engine.DataTypeString, Required: true, PrimaryKey: true},
		{Key: "age", Name: "Age", DataType: engine.DataTypeNumber},
	}
}

func TestUpdateTableRefreshesCachedSchema(t *testing.T) {
	ctx := context.Background()
	srvs, racing := newTestServices(t)

	const ownerID = "owner-update"
	table, serviceErr := srvs.CreateTable(ctx, CreateTableOptions{
		RequestID: "create",
		OwnerID:   ownerID,
		Name:      "users",
		Fields:    usersFields(),
	})
	if serviceErr != nil {
		t.Fatalf("Failed to create table: %v", serviceErr)
	}

	getOpts := GetTableOptions{RequestID: "get", OwnerID: ownerID, TableID: table.ID}
	if _, serviceErr := srvs.GetTable(ctx, getOpts); serviceErr != nil {
		t.Fatalf("Failed to get table: %v", serviceErr)
	}

	racing.beforeWrite = func() {
		if _, serviceErr := srvs.GetTable(ctx, getOpts); serviceErr != nil {
			t.Errorf("Failed to read table during update: %v", serviceErr)
		}
	}
	fields := append(usersFields(), engine.Field{
		Key:      "name",
		Name:     "Name",
		DataType: engine.DataTypeString,
		Required: true,
	})
	if _, serviceErr := srvs.UpdateTable(ctx, UpdateTableOptions{
		RequestID: "update",
		OwnerID:   ownerID,
		TableID:   table.ID,
		Name:      "users",
		Fields:    fields,
	}); serviceErr != nil {
		t.Fatalf("Failed to update table: %v", serviceErr)
	}
	racing.beforeWrite = nil

	t.Run("Should validate records against the new fields", func(t *testing.T) {
		_, serviceErr := srvs.CreateRecord(ctx, CreateRecordOptions{
			RequestID: "missing-name",
			CallerID:  ownerID,
			TableID:   table.ID,
			Body:      map[string]any{"email": "a@x.com", "age": float64(30)},
		})
		if serviceErr == nil {
			t.Fatal("Expected a validation error for the new required field")
		}
		if serviceErr.Code != exceptions.CodeValidation {
			t.Fatalf("Expected code %s, got: %s", exceptions.CodeValidation, serviceErr.Code)
		}
	})

	t.Run("Should store records with the new fields", func(t *testing.T) {
		resp, serviceErr := srvs.CreateRecord(ctx, CreateRecordOptions{
			RequestID: "with-name",
			CallerID:  ownerID,
			TableID:   table.ID,
			Body:      map[string]any{"email": "b@x.com", "age": float64(31), "name": "Bea"},
		})
		if serviceErr != nil {
			t.Fatalf("Failed to create record: %v", serviceErr)
		}

		record := resp.Data
		if _, err := uuid.Parse(record.ID()); err != nil {
			t.Fatalf("Expected a uuid record id, got: %s", record.ID())
		}
		if record.CreatedAt().IsZero() || !record.UpdatedAt().Equal(record.CreatedAt()) {
			t.Fatalf("Expected equal creation timestamps, got: %s %s", record.CreatedAt(), record.UpdatedAt())
		}

		name, ok := record.Payload().Get("name")
		if !ok || name.Interface() != "Bea" {
			t.Fatalf("Expected name Bea, got: %v", name)
		}
	})
}

func TestDeleteTableDropsCachedSchema(t *testing.T) {
	ctx := context.Background()
	srvs, racing := newTestServices(t)

	const ownerID = "owner-delete"
	table, serviceErr := srvs.CreateTable(ctx, CreateTableOptions{
		RequestID: "create",
		OwnerID:   ownerID,
		Name:      "users",
		Fields:    usersFields(),
	})
	if serviceErr != nil {
		t.Fatalf("Failed to create table: %v", serviceErr)
	}

	getOpts := GetTableOptions{RequestID: "get", OwnerID: ownerID, TableID: table.ID}
	racing.beforeWrite = func() {
		if _, serviceErr := srvs.GetTable(ctx, getOpts); serviceErr != nil {
			t.Errorf("Failed to read table during delete: %v", serviceErr)
		}
	}
	if serviceErr := srvs.DeleteTable(ctx, DeleteTableOptions{
		RequestID: "delete",
		OwnerID:   ownerID,
		TableID:   table.ID,
	}); serviceErr != nil {
		t.Fatalf("Failed to delete table: %v", serviceErr)
	}
	racing.beforeWrite = nil

	_, serviceErr = srvs.ListRecords(ctx, ListRecordsOptions{
		RequestID: "list",
		CallerID:  ownerID,
		TableID:   table.ID,
		Query:     map[string]string{},
	})
	if serviceErr == nil {
		t.Fatal("Expected the deleted table to be gone")
	}
	if serviceErr.Code != exceptions.CodeNotFound || serviceErr.Message != exceptions.MessageTableNotFound {
		t.Fatalf("Expected table not found, got: %s %s", serviceErr.Code, serviceErr.Message)
	}
}
