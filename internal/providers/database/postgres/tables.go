// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

const tableColumns string = `"id", "owner_id", "name", "fields", "deleted", "created_at", "updated_at"`

func scanTable(row pgx.Row) (database.Table, error) {
	var table database.Table
	var rawFields []byte
	if err := row.Scan(
		&table.ID,
		&table.OwnerID,
		&table.Name,
		&rawFields,
		&table.Deleted,
		&table.CreatedAt,
		&table.UpdatedAt,
	); err != nil {
		return database.Table{}, normalizeError(err)
	}

	if err := json.Unmarshal(rawFields, &table.Fields); err != nil {
		return database.Table{}, err
	}
	return table, nil
}

const createTable string = `INSERT INTO "tables" ("id", "owner_id", "name", "fields")
VALUES ($1, $2, $3, $4)
RETURNING ` + tableColumns

func (d *Database) CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error) {
	id, err := database.NewID()
	if err != nil {
		return database.Table{}, err
	}

	rawFields, err := json.Marshal(arg.Fields)
	if err != nil {
		return database.Table{}, err
	}

	return scanTable(d.connPool.QueryRow(ctx, createTable, id, arg.OwnerID, arg.Name, rawFields))
}

const findTableByIDAndOwnerID string = `SELECT ` + tableColumns + ` FROM "tables"
WHERE "id" = $1 AND "owner_id" = $2 AND "deleted" = false
LIMIT 1`

func (d *Database) FindTableByIDAndOwnerID(ctx context.Context, id uuid.UUID, ownerID string) (database.Table, error) {
	return scanTable(d.connPool.QueryRow(ctx, findTableByIDAndOwnerID, id, ownerID))
}

const listTablesByOwnerID string = `SELECT ` + tableColumns + ` FROM "tables"
WHERE "owner_id" = $1 AND "deleted" = false
ORDER BY "created_at" DESC, "id" DESC`

func (d *Database) ListTablesByOwnerID(ctx context.Context, ownerID string) ([]database.Table, error) {
	rows, err := d.connPool.Query(ctx, listTablesByOwnerID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]database.Table, 0)
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return tables, rows.Err()
}

const updateTable string = `UPDATE "tables" SET "name" = $3, "fields" = $4, "updated_at" = now()
WHERE "id" = $1 AND "owner_id" = $2 AND "deleted" = false
RETURNING ` + tableColumns

const deleteTableUniqueValues string = `DELETE FROM "record_unique_values" WHERE "table_id" = $1`

const listLivePayloads string = `SELECT "id", "payload" FROM "records"
WHERE "table_id" = $1 AND "deleted" = false
ORDER BY "created_at" ASC, "id" ASC`

// UpdateTable replaces the name and fields of a table and rebuilds its unique
// value index for the new primary fields in the same transaction.
func (d *Database) UpdateTable(ctx context.Context, arg database.UpdateTableParams) (table database.Table, err error) {
	rawFields, err := json.Marshal(arg.Fields)
	if err != nil {
		return database.Table{}, err
	}

	txn, err := d.BeginTx(ctx)
	if err != nil {
		return database.Table{}, err
	}
	defer d.FinalizeTx(ctx, txn, &err)

	if table, err = scanTable(txn.QueryRow(ctx, updateTable, arg.ID, arg.OwnerID, arg.Name, rawFields)); err != nil {
		return database.Table{}, err
	}
	if _, err = txn.Exec(ctx, deleteTableUniqueValues, arg.ID); err != nil {
		return database.Table{}, err
	}
	if len(engine.PrimaryFields(arg.Fields)) == 0 {
		return table, nil
	}

	rows, err := txn.Query(ctx, listLivePayloads, arg.ID)
	if err != nil {
		return database.Table{}, err
	}
	type livePayload struct {
		id      uuid.UUID
		payload *engine.Payload
	}
	payloads := make([]livePayload, 0)
	for rows.Next() {
		var id uuid.UUID
		var raw []byte
		if err = rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return database.Table{}, err
		}

		var payload *engine.Payload
		if payload, err = decodePayload(raw, arg.Fields); err != nil {
			rows.Close()
			return database.Table{}, err
		}
		payloads = append(payloads, livePayload{id: id, payload: payload})
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return database.Table{}, err
	}

	for _, p := range payloads {
		if err = insertUniqueValues(ctx, txn, arg.ID, p.id, arg.Fields, p.payload); err != nil {
			return database.Table{}, err
		}
	}

	return table, nil
}

const softDeleteTable string = `UPDATE "tables" SET "deleted" = true, "updated_at" = now()
WHERE "id" = $1 AND "owner_id" = $2 AND "deleted" = false`

const softDeleteTableRecords string = `UPDATE "records" SET "deleted" = true, "updated_at" = now()
WHERE "table_id" = $1 AND "deleted" = false`

func (d *Database) DeleteTable(ctx context.Context, id uuid.UUID, ownerID string) (count int64, err error) {
	txn, err := d.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer d.FinalizeTx(ctx, txn, &err)

	tag, err := txn.Exec(ctx, softDeleteTable, id, ownerID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		err = database.ErrNotFound
		return 0, err
	}

	if tag, err = txn.Exec(ctx, softDeleteTableRecords, id); err != nil {
		return 0, err
	}
	if _, err = txn.Exec(ctx, deleteTableUniqueValues, id); err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
