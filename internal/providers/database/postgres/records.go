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

func decodePayload(raw []byte, fields []engine.Field) (*engine.Payload, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return engine.DecodePayload(m, fields), nil
}

func scanRecord(row pgx.Row, fields []engine.Field) (database.Record, error) {
	var record database.Record
	var raw []byte
	if err := row.Scan(
		&record.ID,
		&record.TableID,
		&record.OwnerID,
		&raw,
		&record.Deleted,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return database.Record{}, normalizeError(err)
	}

	payload, err := decodePayload(raw, fields)
	if err != nil {
		return database.Record{}, err
	}
	record.Payload = payload
	return record, nil
}

const insertUniqueValue string = `INSERT INTO "record_unique_values" ("table_id", "value_key", "field_key", "record_id")
VALUES ($1, $2, $3, $4)
ON CONFLICT DO NOTHING`

// insertUniqueValues claims the unique values of a record, failing on the
// first value another live record already holds.
func insertUniqueValues(
	ctx context.Context,
	txn pgx.Tx,
	tableID,
	recordID uuid.UUID,
	fields []engine.Field,
	payload *engine.Payload,
) error {
	for _, v := range engine.UniqueValues(fields, payload) {
		tag, err := txn.Exec(ctx, insertUniqueValue, tableID, v.Key(), v.FieldKey, recordID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return database.NewUniqueViolationError(v)
		}
	}
	return nil
}

const lockLiveTable string = `SELECT "id" FROM "tables"
WHERE "id" = $1 AND "owner_id" = $2 AND "deleted" = false
FOR SHARE`

const createRecord string = `INSERT INTO "records" ("id", "table_id", "owner_id", "payload")
VALUES ($1, $2, $3, $4)
RETURNING ` + recordColumns

func (d *Database) CreateRecord(ctx context.Context, arg database.CreateRecordParams) (record database.Record, err error) {
	id, err := database.NewID()
	if err != nil {
		return database.Record{}, err
	}

	raw, err := arg.Payload.MarshalJSON()
	if err != nil {
		return database.Record{}, err
	}

	txn, err := d.BeginTx(ctx)
	if err != nil {
		return database.Record{}, err
	}
	defer d.FinalizeTx(ctx, txn, &err)

	var tableID uuid.UUID
	if err = txn.QueryRow(ctx, lockLiveTable, arg.TableID, arg.OwnerID).Scan(&tableID); err != nil {
		err = normalizeError(err)
		return database.Record{}, err
	}

	if record, err = scanRecord(txn.QueryRow(ctx, createRecord, id, arg.TableID, arg.OwnerID, raw), arg.Fields); err != nil {
		return database.Record{}, err
	}
	if err = insertUniqueValues(ctx, txn, arg.TableID, id, arg.Fields, arg.Payload); err != nil {
		return database.Record{}, err
	}

	return record, nil
}

const findRecord string = `SELECT ` + recordColumns + ` FROM "records"
WHERE "id" = $1 AND "table_id" = $2 AND ("deleted" = false OR $3)
LIMIT 1`

func (d *Database) FindRecord(ctx context.Context, arg database.FindRecordParams) (database.Record, error) {
	return scanRecord(d.connPool.QueryRow(ctx, findRecord, arg.RecordID, arg.TableID, arg.WithDeleted), arg.Fields)
}

func (d *Database) ListRecords(ctx context.Context, arg database.ListRecordsParams) ([]database.Record, int64, error) {
	query, err := buildListRecordsQuery(arg.TableID, arg.Fields, arg.Filter, arg.Sort, arg.Window)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := d.connPool.QueryRow(ctx, query.countSQL, query.countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := d.connPool.Query(ctx, query.selectSQL, query.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]database.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows, arg.Fields)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	return records, total, rows.Err()
}

const existsLiveValue string = `SELECT EXISTS (
    SELECT 1 FROM "record_unique_values"
    WHERE "table_id" = $1 AND "value_key" = $2 AND "record_id" <> $3
)`

func (d *Database) ExistsLiveValue(ctx context.Context, arg database.ExistsLiveValueParams) (bool, error) {
	key := engine.UniqueValue{FieldKey: arg.FieldKey, Value: arg.Value}.Key()

	var exists bool
	if err := d.connPool.QueryRow(ctx, existsLiveValue, arg.TableID, key, arg.ExcludeRecordID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

const lockLiveRecordPayload string = `SELECT "payload" FROM "records"
WHERE "id" = $1 AND "table_id" = $2 AND "deleted" = false
FOR UPDATE`

const deleteRecordUniqueValues string = `DELETE FROM "record_unique_values" WHERE "record_id" = $1`

const updateRecordPayload string = `UPDATE "records" SET "payload" = $3, "updated_at" = now()
WHERE "id" = $1 AND "table_id" = $2
RETURNING ` + recordColumns

func (d *Database) UpdateRecord(ctx context.Context, arg database.UpdateRecordParams) (record database.Record, err error) {
	txn, err := d.BeginTx(ctx)
	if err != nil {
		return database.Record{}, err
	}
	defer d.FinalizeTx(ctx, txn, &err)

	var raw []byte
	if err = txn.QueryRow(ctx, lockLiveRecordPayload, arg.RecordID, arg.TableID).Scan(&raw); err != nil {
		err = normalizeError(err)
		return database.Record{}, err
	}

	next := arg.Payload
	if arg.Merge {
		var current *engine.Payload
		if current, err = decodePayload(raw, arg.Fields); err != nil {
			return database.Record{}, err
		}
		next = current.Merge(arg.Payload)
	}

	if _, err = txn.Exec(ctx, deleteRecordUniqueValues, arg.RecordID); err != nil {
		return database.Record{}, err
	}
	if err = insertUniqueValues(ctx, txn, arg.TableID, arg.RecordID, arg.Fields, next); err != nil {
		return database.Record{}, err
	}

	var nextRaw []byte
	if nextRaw, err = next.MarshalJSON(); err != nil {
		return database.Record{}, err
	}

	record, err = scanRecord(txn.QueryRow(ctx, updateRecordPayload, arg.RecordID, arg.TableID, nextRaw), arg.Fields)
	return record, err
}

const softDeleteRecord string = `UPDATE "records" SET "deleted" = true, "updated_at" = now()
WHERE "id" = $1 AND "table_id" = $2 AND "deleted" = false`

func (d *Database) DeleteRecord(ctx context.Context, arg database.DeleteRecordParams) (err error) {
	txn, err := d.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer d.FinalizeTx(ctx, txn, &err)

	tag, err := txn.Exec(ctx, softDeleteRecord, arg.RecordID, arg.TableID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = database.ErrNotFound
		return err
	}

	_, err = txn.Exec(ctx, deleteRecordUniqueValues, arg.RecordID)
	return err
}
