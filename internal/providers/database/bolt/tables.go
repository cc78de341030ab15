// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bolt

import (
	"context"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

func (s *Store) CreateTable(_ context.Context, arg database.CreateTableParams) (database.Table, error) {
	id, err := database.NewID()
	if err != nil {
		return database.Table{}, err
	}

	createdAt := now()
	doc := tableDoc{
		OwnerID:   arg.OwnerID,
		Name:      arg.Name,
		Fields:    arg.Fields,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	err = s.bdb.Update(func(btx *bbolt.Tx) error {
		names := btx.Bucket(tableNamesBucket)
		nameKey := tableNameKey(arg.OwnerID, arg.Name)
		if names.Get(nameKey) != nil {
			return database.ErrTableNameTaken
		}
		if err := names.Put(nameKey, id[:]); err != nil {
			return err
		}
		if err := putDoc(btx.Bucket(tablesBucket), id, &doc); err != nil {
			return err
		}
		if _, err := btx.Bucket(recordsBucket).CreateBucket(id[:]); err != nil {
			return err
		}
		_, err := btx.Bucket(uniqueBucket).CreateBucket(id[:])
		return err
	})
	if err != nil {
		return database.Table{}, err
	}

	return doc.toTable(id), nil
}

func (s *Store) FindTableByIDAndOwnerID(_ context.Context, id uuid.UUID, ownerID string) (database.Table, error) {
	var table database.Table
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		doc, err := getLiveTable(btx, id, ownerID)
		if err != nil {
			return err
		}
		table = doc.toTable(id)
		return nil
	})
	return table, err
}

// ListTablesByOwnerID walks the tables newest first, ids being time ordered.
func (s *Store) ListTablesByOwnerID(_ context.Context, ownerID string) ([]database.Table, error) {
	tables := make([]database.Table, 0)
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		c := btx.Bucket(tablesBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var doc tableDoc
			if err := decode(v, &doc); err != nil {
				return err
			}
			if doc.Deleted || doc.OwnerID != ownerID {
				continue
			}

			id, err := uuid.FromBytes(k)
			if err != nil {
				return err
			}
			tables = append(tables, doc.toTable(id))
		}
		return nil
	})
	return tables, err
}

func (s *Store) UpdateTable(_ context.Context, arg database.UpdateTableParams) (database.Table, error) {
	var table database.Table
	err := s.bdb.Update(func(btx *bbolt.Tx) error {
		doc, err := getLiveTable(btx, arg.ID, arg.OwnerID)
		if err != nil {
			return err
		}

		if doc.Name != arg.Name {
			names := btx.Bucket(tableNamesBucket)
			nameKey := tableNameKey(arg.OwnerID, arg.Name)
			if names.Get(nameKey) != nil {
				return database.ErrTableNameTaken
			}
			if err := names.Delete(tableNameKey(doc.OwnerID, doc.Name)); err != nil {
				return err
			}
			if err := names.Put(nameKey, arg.ID[:]); err != nil {
				return err
			}
		}

		doc.Name = arg.Name
		doc.Fields = arg.Fields
		doc.UpdatedAt = now()
		if err := putDoc(btx.Bucket(tablesBucket), arg.ID, doc); err != nil {
			return err
		}
		if err := rebuildUniqueIndex(btx, arg.ID, arg.Fields); err != nil {
			return err
		}

		table = doc.toTable(arg.ID)
		return nil
	})
	return table, err
}

// rebuildUniqueIndex recomputes the unique value index of a table from its
// live records, failing when the primary fields already hold duplicates.
func rebuildUniqueIndex(btx *bbolt.Tx, tableID uuid.UUID, fields []engine.Field) error {
	root := btx.Bucket(uniqueBucket)
	if err := root.DeleteBucket(tableID[:]); err != nil && err != bbolt.ErrBucketNotFound {
		return err
	}
	unique, err := root.CreateBucket(tableID[:])
	if err != nil {
		return err
	}
	if len(engine.PrimaryFields(fields)) == 0 {
		return nil
	}

	return tableRecordsBucket(btx, tableID).ForEach(func(k, v []byte) error {
		var doc recordDoc
		if err := decode(v, &doc); err != nil {
			return err
		}
		if doc.Deleted {
			return nil
		}

		payload := engine.DecodePayload(doc.Payload, fields)
		for key, value := range database.UniqueIndexKeys(fields, payload) {
			if unique.Get([]byte(key)) != nil {
				return database.NewUniqueViolationError(value)
			}
			if err := unique.Put([]byte(key), k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteTable(_ context.Context, id uuid.UUID, ownerID string) (int64, error) {
	var count int64
	err := s.bdb.Update(func(btx *bbolt.Tx) error {
		doc, err := getLiveTable(btx, id, ownerID)
		if err != nil {
			return err
		}

		doc.Deleted = true
		doc.UpdatedAt = now()
		if err := putDoc(btx.Bucket(tablesBucket), id, doc); err != nil {
			return err
		}
		if err := btx.Bucket(tableNamesBucket).Delete(tableNameKey(doc.OwnerID, doc.Name)); err != nil {
			return err
		}

		records := tableRecordsBucket(btx, id)
		updates := make(map[string][]byte)
		if err := records.ForEach(func(k, v []byte) error {
			var rec recordDoc
			if err := decode(v, &rec); err != nil {
				return err
			}
			if rec.Deleted {
				return nil
			}

			rec.Deleted = true
			rec.UpdatedAt = doc.UpdatedAt
			raw, err := encode(&rec)
			if err != nil {
				return err
			}
			updates[string(k)] = raw
			return nil
		}); err != nil {
			return err
		}
		for k, raw := range updates {
			if err := records.Put([]byte(k), raw); err != nil {
				return err
			}
		}
		count = int64(len(updates))

		root := btx.Bucket(uniqueBucket)
		if err := root.DeleteBucket(id[:]); err != nil {
			return err
		}
		_, err = root.CreateBucket(id[:])
		return err
	})
	return count, err
}
