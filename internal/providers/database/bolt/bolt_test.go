// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

var testFields = []engine.Field{
	{Key: "name", Name: "Name", DataType: engine.DataTypeString, Required: true},
	{Key: "email", Name: "Email", DataType: engine.DataTypeString, PrimaryKey: true},
	{Key: "age", Name: "Age", DataType: engine.DataTypeNumber},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{Path: filepath.Join(t.TempDir(), "test.db"), IsTesting: true})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func createTestTable(t *testing.T, store *Store, ownerID string) database.Table {
	t.Helper()
	table, err := store.CreateTable(context.Background(), database.CreateTableParams{
		OwnerID: ownerID,
		Name:    "people-" + faker.UUIDDigit(),
		Fields:  testFields,
	})
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return table
}

func newPayload(t *testing.T, raw map[string]any) *engine.Payload {
	t.Helper()
	res := engine.ValidateRecord(raw, testFields, false)
	if !res.OK {
		t.Fatalf("Invalid payload: %v", res.Errors)
	}
	return res.Normalized
}

func createTestRecord(t *testing.T, store *Store, table database.Table, raw map[string]any) database.Record {
	t.Helper()
	record, err := store.CreateRecord(context.Background(), database.CreateRecordParams{
		TableID: table.ID,
		OwnerID: table.OwnerID,
		Fields:  table.Fields,
		Payload: newPayload(t, raw),
	})
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	return record
}

func assertUniqueViolation(t *testing.T, err error, fieldKey string) {
	t.Helper()
	var violation *database.UniqueViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("Expected unique violation, got: %v", err)
	}
	if violation.FieldKey != fieldKey {
		t.Fatalf("Actual field: %s, Expected: %s", violation.FieldKey, fieldKey)
	}
}

func TestTables(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ownerID := faker.UUIDHyphenated()

	t.Run("Should reject a duplicate name for the same owner", func(t *testing.T) {
		table := createTestTable(t, store, ownerID)

		_, err := store.CreateTable(ctx, database.CreateTableParams{
			OwnerID: ownerID,
			Name:    table.Name,
			Fields:  testFields,
		})
		if !errors.Is(err, database.ErrTableNameTaken) {
			t.Fatalf("Expected name taken, got: %v", err)
		}

		_, err = store.CreateTable(ctx, database.CreateTableParams{
			OwnerID: faker.UUIDHyphenated(),
			Name:    table.Name,
			Fields:  testFields,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("Should hide tables from other owners", func(t *testing.T) {
		table := createTestTable(t, store, ownerID)

		if _, err := store.FindTableByIDAndOwnerID(ctx, table.ID, "someone-else"); !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("Expected not found, got: %v", err)
		}
		found, err := store.FindTableByIDAndOwnerID(ctx, table.ID, ownerID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if found.Name != table.Name || len(found.Fields) != len(testFields) {
			t.Fatalf("Unexpected table: %+v", found)
		}
	})

	t.Run("Should list live tables newest first", func(t *testing.T) {
		owner := faker.UUIDHyphenated()
		first := createTestTable(t, store, owner)
		second := createTestTable(t, store, owner)

		tables, err := store.ListTablesByOwnerID(ctx, owner)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(tables) != 2 || tables[0].ID != second.ID || tables[1].ID != first.ID {
			t.Fatalf("Unexpected tables: %+v", tables)
		}
	})

	t.Run("Should refuse to make a field with duplicates primary", func(t *testing.T) {
		table := createTestTable(t, store, ownerID)
		createTestRecord(t, store, table, map[string]any{"name": "Ada", "email": "a@x.com"})
		createTestRecord(t, store, table, map[string]any{"name": "Ada", "email": "b@x.com"})

		fields := []engine.Field{
			{Key: "name", Name: "Name", DataType: engine.DataTypeString, PrimaryKey: true},
		}
		_, err := store.UpdateTable(ctx, database.UpdateTableParams{
			ID:      table.ID,
			OwnerID: ownerID,
			Name:    table.Name,
			Fields:  fields,
		})
		assertUniqueViolation(t, err, "name")

		found, err := store.FindTableByIDAndOwnerID(ctx, table.ID, ownerID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(found.Fields) != len(testFields) {
			t.Fatal("Table update should have been rolled back")
		}
	})
}

func TestUniqueValues(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	table := createTestTable(t, store, faker.UUIDHyphenated())
	email := faker.Email()

	first := createTestRecord(t, store, table, map[string]any{"name": "Ada", "email": email})

	t.Run("Should reject a second live record with the same value", func(t *testing.T) {
		_, err := store.CreateRecord(ctx, database.CreateRecordParams{
			TableID: table.ID,
			OwnerID: table.OwnerID,
			Fields:  table.Fields,
			Payload: newPayload(t, map[string]any{"name": "Bob", "email": email}),
		})
		assertUniqueViolation(t, err, "email")

		exists, err := store.ExistsLiveValue(ctx, database.ExistsLiveValueParams{
			TableID:  table.ID,
			FieldKey: "email",
			Value:    engine.StringVal(email),
		})
		if err != nil || !exists {
			t.Fatalf("Expected existing value, got: %v %v", exists, err)
		}
	})

	t.Run("Should allow a record to keep its own value", func(t *testing.T) {
		exists, err := store.ExistsLiveValue(ctx, database.ExistsLiveValueParams{
			TableID:         table.ID,
			FieldKey:        "email",
			Value:           engine.StringVal(email),
			ExcludeRecordID: first.ID,
		})
		if err != nil || exists {
			t.Fatalf("Expected no other record, got: %v %v", exists, err)
		}

		_, err = store.UpdateRecord(ctx, database.UpdateRecordParams{
			TableID:  table.ID,
			RecordID: first.ID,
			Fields:   table.Fields,
			Payload:  newPayload(t, map[string]any{"email": email, "age": 36}),
			Merge:    true,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("Should release values of deleted records", func(t *testing.T) {
		err := store.DeleteRecord(ctx, database.DeleteRecordParams{
			TableID:  table.ID,
			RecordID: first.ID,
			Fields:   table.Fields,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		createTestRecord(t, store, table, map[string]any{"name": "Bob", "email": email})
	})

	t.Run("Should release previous values on update", func(t *testing.T) {
		record := createTestRecord(t, store, table, map[string]any{"name": "Eve", "email": "old@x.com"})
		_, err := store.UpdateRecord(ctx, database.UpdateRecordParams{
			TableID:  table.ID,
			RecordID: record.ID,
			Fields:   table.Fields,
			Payload:  newPayload(t, map[string]any{"name": "Eve", "email": "new@x.com"}),
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		createTestRecord(t, store, table, map[string]any{"name": "Mallory", "email": "old@x.com"})
	})
}

func TestLongUniqueValues(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	table := createTestTable(t, store, faker.UUIDHyphenated())
	email := strings.Repeat("a", 40_000) + "@example.com"

	record := createTestRecord(t, store, table, map[string]any{"name": "Ada", "email": email})
	if stored, _ := record.Payload.Get("email"); stored.Interface() != email {
		t.Fatal("Long primary value was not stored as is")
	}

	_, err := store.CreateRecord(ctx, database.CreateRecordParams{
		TableID: table.ID,
		OwnerID: table.OwnerID,
		Fields:  table.Fields,
		Payload: newPayload(t, map[string]any{"name": "Bob", "email": email}),
	})
	assertUniqueViolation(t, err, "email")
}

func TestRecordUpdates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	table := createTestTable(t, store, faker.UUIDHyphenated())
	record := createTestRecord(t, store, table, map[string]any{"name": "Ada", "email": "a@x.com", "age": 36})

	merged, err := store.UpdateRecord(ctx, database.UpdateRecordParams{
		TableID:  table.ID,
		RecordID: record.ID,
		Fields:   table.Fields,
		Payload:  newPayload(t, map[string]any{"age": 37}),
		Merge:    true,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if merged.Payload.Len() != 3 {
		t.Fatalf("Merge should keep other keys: %v", merged.Payload.Keys())
	}

	replaced, err := store.UpdateRecord(ctx, database.UpdateRecordParams{
		TableID:  table.ID,
		RecordID: record.ID,
		Fields:   table.Fields,
		Payload:  newPayload(t, map[string]any{"name": "Grace"}),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if replaced.Payload.Len() != 1 || replaced.Payload.Has("age") {
		t.Fatalf("Replace should drop other keys: %v", replaced.Payload.Keys())
	}
}

func TestListRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	table := createTestTable(t, store, faker.UUIDHyphenated())

	for _, r := range []struct {
		name string
		age  int
	}{
		{"carol", 20}, {"bob", 30}, {"alice", 20}, {"dave", 10}, {"erin", 40},
	} {
		createTestRecord(t, store, table, map[string]any{"name": r.name, "age": r.age})
	}

	list := func(t *testing.T, query map[string]string, sort string, window engine.Window) ([]string, int64) {
		t.Helper()
		filter, errs := engine.BuildFilter(query, table.Fields, engine.QueryOptions{})
		if len(errs) > 0 {
			t.Fatalf("Filter errors: %v", errs)
		}
		keys, errs := engine.ParseSort(sort, table.Fields, engine.QueryOptions{})
		if len(errs) > 0 {
			t.Fatalf("Sort errors: %v", errs)
		}

		records, total, err := store.ListRecords(ctx, database.ListRecordsParams{
			TableID: table.ID,
			Fields:  table.Fields,
			Filter:  filter,
			Sort:    keys,
			Window:  window,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		names := make([]string, len(records))
		for i, rec := range records {
			v, _ := rec.Payload.Get("name")
			names[i] = string(v.(engine.StringVal))
		}
		return names, total
	}

	t.Run("Should filter by range", func(t *testing.T) {
		names, total := list(t, map[string]string{"from": `{"age":15}`, "to": `{"age":25}`}, "", engine.Window{Page: 1})
		if total != 2 || strings.Join(names, ",") != "carol,alice" {
			t.Fatalf("Unexpected result: %v %d", names, total)
		}
	})

	t.Run("Should sort with tie breakers", func(t *testing.T) {
		names, _ := list(t, nil, `{"age":-1,"name":1}`, engine.Window{Page: 1})
		if strings.Join(names, ",") != "erin,bob,alice,carol,dave" {
			t.Fatalf("Unexpected order: %v", names)
		}
	})

	t.Run("Should window after counting", func(t *testing.T) {
		names, total := list(t, nil, `{"name":1}`, engine.Window{Skip: 2, Size: 2, Page: 2})
		if total != 5 || strings.Join(names, ",") != "carol,dave" {
			t.Fatalf("Unexpected page: %v %d", names, total)
		}
	})
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ownerID := faker.UUIDHyphenated()
	table := createTestTable(t, store, ownerID)
	first := createTestRecord(t, store, table, map[string]any{"name": "Ada", "email": "a@x.com"})
	second := createTestRecord(t, store, table, map[string]any{"name": "Bob", "email": "b@x.com"})

	t.Run("Should keep deleted records in the store", func(t *testing.T) {
		err := store.DeleteRecord(ctx, database.DeleteRecordParams{TableID: table.ID, RecordID: first.ID, Fields: table.Fields})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if _, err := store.FindRecord(ctx, database.FindRecordParams{
			TableID:  table.ID,
			RecordID: first.ID,
			Fields:   table.Fields,
		}); !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("Expected not found, got: %v", err)
		}

		stored, err := store.FindRecord(ctx, database.FindRecordParams{
			TableID:     table.ID,
			RecordID:    first.ID,
			Fields:      table.Fields,
			WithDeleted: true,
		})
		if err != nil || !stored.Deleted {
			t.Fatalf("Expected a deleted record, got: %+v %v", stored, err)
		}

		_, total, err := store.ListRecords(ctx, database.ListRecordsParams{TableID: table.ID, Fields: table.Fields})
		if err != nil || total != 1 {
			t.Fatalf("Expected one live record, got: %d %v", total, err)
		}
	})

	t.Run("Should cascade table deletes", func(t *testing.T) {
		count, err := store.DeleteTable(ctx, table.ID, ownerID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if count != 1 {
			t.Fatalf("Actual count: %d, Expected: 1", count)
		}

		for _, id := range []uuid.UUID{first.ID, second.ID} {
			stored, err := store.FindRecord(ctx, database.FindRecordParams{
				TableID:     table.ID,
				RecordID:    id,
				Fields:      table.Fields,
				WithDeleted: true,
			})
			if err != nil || !stored.Deleted {
				t.Fatalf("Expected a deleted record, got: %+v %v", stored, err)
			}
		}

		if _, err := store.FindTableByIDAndOwnerID(ctx, table.ID, ownerID); !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("Expected not found, got: %v", err)
		}

		if _, err := store.CreateTable(ctx, database.CreateTableParams{
			OwnerID: ownerID,
			Name:    table.Name,
			Fields:  testFields,
		}); err != nil {
			t.Fatalf("Name of a deleted table should be free: %v", err)
		}
	})
}
