// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bolt is an embedded document store for tables and records on top of
// bbolt. Every write runs in a single serialized bbolt transaction, so the
// unique value index and the table cascades are atomic.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

var (
	tablesBucket     = []byte("tables")
	tableNamesBucket = []byte("table_names")
	recordsBucket    = []byte("records")
	uniqueBucket     = []byte("unique_values")
)

type Options struct {
	Path      string
	IsTesting bool
}

type Store struct {
	bdb *bbolt.DB
}

var _ database.Store = (*Store)(nil)

func Open(opts Options) (*Store, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opts.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(opts.Path, 0600, bopt)
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}

	if err := bdb.Update(func(btx *bbolt.Tx) error {
		for _, name := range [][]byte{tablesBucket, tableNamesBucket, recordsBucket, uniqueBucket} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("bolt: %w", err)
	}

	return &Store{bdb: bdb}, nil
}

func (s *Store) Ping(_ context.Context) error {
	return s.bdb.View(func(btx *bbolt.Tx) error {
		if btx.Bucket(tablesBucket) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.bdb.Close()
}

type tableDoc struct {
	OwnerID   string         `msgpack:"owner_id"`
	Name      string         `msgpack:"name"`
	Fields    []engine.Field `msgpack:"fields"`
	Deleted   bool           `msgpack:"deleted"`
	CreatedAt time.Time      `msgpack:"created_at"`
	UpdatedAt time.Time      `msgpack:"updated_at"`
}

func (d *tableDoc) toTable(id uuid.UUID) database.Table {
	return database.Table{
		ID:        id,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Fields:    d.Fields,
		Deleted:   d.Deleted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type recordDoc struct {
	OwnerID   string         `msgpack:"owner_id"`
	Payload   map[string]any `msgpack:"payload"`
	Deleted   bool           `msgpack:"deleted"`
	CreatedAt time.Time      `msgpack:"created_at"`
	UpdatedAt time.Time      `msgpack:"updated_at"`
}

func (d *recordDoc) toRecord(id, tableID uuid.UUID, fields []engine.Field) database.Record {
	return database.Record{
		ID:        id,
		TableID:   tableID,
		OwnerID:   d.OwnerID,
		Payload:   engine.DecodePayload(d.Payload, fields),
		Deleted:   d.Deleted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T using MsgPack: %w", v, err)
	}
	return buf.Bytes(), nil
}

func decode(buf []byte, v any) error {
	dec := msgpack.GetDecoder()
	dec.Reset(bytes.NewReader(buf))
	err := dec.Decode(v)
	msgpack.PutDecoder(dec)
	if err != nil {
		return fmt.Errorf("failed to decode msgpack into %T: %w", v, err)
	}
	return nil
}

func tableNameKey(ownerID, name string) []byte {
	return []byte(ownerID + "\x00" + name)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// getLiveTable loads a table that belongs to the owner and is not deleted.
func getLiveTable(btx *bbolt.Tx, id uuid.UUID, ownerID string) (*tableDoc, error) {
	raw := btx.Bucket(tablesBucket).Get(id[:])
	if raw == nil {
		return nil, database.ErrNotFound
	}

	var doc tableDoc
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Deleted || (ownerID != "" && doc.OwnerID != ownerID) {
		return nil, database.ErrNotFound
	}

	return &doc, nil
}

func putDoc(buck *bbolt.Bucket, id uuid.UUID, doc any) error {
	raw, err := encode(doc)
	if err != nil {
		return err
	}
	return buck.Put(id[:], raw)
}

func tableRecordsBucket(btx *bbolt.Tx, tableID uuid.UUID) *bbolt.Bucket {
	return btx.Bucket(recordsBucket).Bucket(tableID[:])
}

func tableUniqueBucket(btx *bbolt.Tx, tableID uuid.UUID) *bbolt.Bucket {
	return btx.Bucket(uniqueBucket).Bucket(tableID[:])
}
