// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrTableNameTaken = errors.New("table name already taken")
)

// UniqueViolationError is returned when a write would make two live records
// of a table share the value of a primary field.
type UniqueViolationError struct {
	FieldKey string
	Value    string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("Field '%s' must be unique. Value '%s' already exists.", e.FieldKey, e.Value)
}

type Table struct {
	ID        uuid.UUID
	OwnerID   string
	Name      string
	Fields    []engine.Field
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Record struct {
	ID        uuid.UUID
	TableID   uuid.UUID
	OwnerID   string
	Payload   *engine.Payload
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateTableParams struct {
	OwnerID string
	Name    string
	Fields  []engine.Field
}

type UpdateTableParams struct {
	ID      uuid.UUID
	OwnerID string
	Name    string
	Fields  []engine.Field
}

type CreateRecordParams struct {
	TableID uuid.UUID
	OwnerID string
	Fields  []engine.Field
	Payload *engine.Payload
}

type FindRecordParams struct {
	TableID     uuid.UUID
	RecordID    uuid.UUID
	Fields      []engine.Field
	WithDeleted bool
}

type ListRecordsParams struct {
	TableID uuid.UUID
	Fields  []engine.Field
	Filter  engine.Filter
	Sort    []engine.SortKey
	Window  engine.Window
}

type ExistsLiveValueParams struct {
	TableID         uuid.UUID
	FieldKey        string
	Value           engine.Value
	ExcludeRecordID uuid.UUID
}

type UpdateRecordParams struct {
	TableID  uuid.UUID
	RecordID uuid.UUID
	Fields   []engine.Field
	Payload  *engine.Payload

	// Merge sets only the keys of Payload on top of the stored payload
	// instead of replacing it.
	Merge bool
}

type DeleteRecordParams struct {
	TableID  uuid.UUID
	RecordID uuid.UUID
	Fields   []engine.Field
}

// Store is the document store behind the engine. Implementations keep a
// unique value index of the primary fields of live records, written
// atomically with the records themselves, and never physically remove
// tables or records.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	CreateTable(ctx context.Context, arg CreateTableParams) (Table, error)
	FindTableByIDAndOwnerID(ctx context.Context, id uuid.UUID, ownerID string) (Table, error)
	ListTablesByOwnerID(ctx context.Context, ownerID string) ([]Table, error)
	UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error)
	// DeleteTable soft deletes a table and cascades over its records,
	// returning the number of records affected.
	DeleteTable(ctx context.Context, id uuid.UUID, ownerID string) (int64, error)

	CreateRecord(ctx context.Context, arg CreateRecordParams) (Record, error)
	FindRecord(ctx context.Context, arg FindRecordParams) (Record, error)
	// ListRecords returns the window of live records matching the filter
	// and the total count of matches.
	ListRecords(ctx context.Context, arg ListRecordsParams) ([]Record, int64, error)
	ExistsLiveValue(ctx context.Context, arg ExistsLiveValueParams) (bool, error)
	UpdateRecord(ctx context.Context, arg UpdateRecordParams) (Record, error)
	DeleteRecord(ctx context.Context, arg DeleteRecordParams) error
}

// NewID returns a time ordered identifier for tables and records.
func NewID() (uuid.UUID, error) {
	return uuid.NewV7()
}

// UniqueIndexKeys maps every unique value of a payload to its index key.
func UniqueIndexKeys(fields []engine.Field, payload *engine.Payload) map[string]engine.UniqueValue {
	values := engine.UniqueValues(fields, payload)
	keys := make(map[string]engine.UniqueValue, len(values))
	for _, v := range values {
		keys[v.Key()] = v
	}
	return keys
}

// ValueString renders a value the way violation messages show it.
func ValueString(v engine.Value) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func NewUniqueViolationError(v engine.UniqueValue) *UniqueViolationError {
	return &UniqueViolationError{FieldKey: v.FieldKey, Value: ValueString(v.Value)}
}
