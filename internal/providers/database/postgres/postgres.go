// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres stores tables and records in PostgreSQL, record payloads
// as JSONB and the unique value index in its own table.
package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

//go:embed schema.sql
var schemaSQL string

const (
	pgUniqueViolation   string = "23505"
	tableNameConstraint string = "tables_owner_id_name_uidx"
)

type Database struct {
	connPool *pgxpool.Pool
}

var _ database.Store = (*Database)(nil)

func NewDatabase(connPool *pgxpool.Pool) *Database {
	return &Database{connPool: connPool}
}

// EnsureSchema creates the tables and indexes the store needs.
func (d *Database) EnsureSchema(ctx context.Context) error {
	_, err := d.connPool.Exec(ctx, schemaSQL)
	return err
}

func (d *Database) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return d.connPool.BeginTx(ctx, pgx.TxOptions{
		DeferrableMode: pgx.Deferrable,
		IsoLevel:       pgx.ReadCommitted,
		AccessMode:     pgx.ReadWrite,
	})
}

// FinalizeTx commits the transaction unless the operation failed or panicked.
// It must be deferred directly.
func (d *Database) FinalizeTx(ctx context.Context, txn pgx.Tx, err *error) {
	if p := recover(); p != nil {
		_ = txn.Rollback(ctx)
		panic(p)
	}
	if *err != nil {
		if rbErr := txn.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			*err = errors.Join(*err, rbErr)
		}
		return
	}
	*err = txn.Commit(ctx)
}

func (d *Database) Ping(ctx context.Context) error {
	return d.connPool.Ping(ctx)
}

func (d *Database) Close() error {
	d.connPool.Close()
	return nil
}

func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return database.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == tableNameConstraint {
		return database.ErrTableNameTaken
	}

	return err
}
