// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bolt

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

func (s *Store) CreateRecord(_ context.Context, arg database.CreateRecordParams) (database.Record, error) {
	id, err := database.NewID()
	if err != nil {
		return database.Record{}, err
	}

	createdAt := now()
	doc := recordDoc{
		OwnerID:   arg.OwnerID,
		Payload:   arg.Payload.Map(),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	err = s.bdb.Update(func(btx *bbolt.Tx) error {
		if _, err := getLiveTable(btx, arg.TableID, arg.OwnerID); err != nil {
			return err
		}

		unique := tableUniqueBucket(btx, arg.TableID)
		keys := database.UniqueIndexKeys(arg.Fields, arg.Payload)
		for key, value := range keys {
			if unique.Get([]byte(key)) != nil {
				return database.NewUniqueViolationError(value)
			}
		}
		for key := range keys {
			if err := unique.Put([]byte(key), id[:]); err != nil {
				return err
			}
		}

		return putDoc(tableRecordsBucket(btx, arg.TableID), id, &doc)
	})
	if err != nil {
		return database.Record{}, err
	}

	return database.Record{
		ID:        id,
		TableID:   arg.TableID,
		OwnerID:   arg.OwnerID,
		Payload:   arg.Payload.Clone(),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

func getRecordDoc(btx *bbolt.Tx, tableID, recordID uuid.UUID, withDeleted bool) (*recordDoc, error) {
	records := tableRecordsBucket(btx, tableID)
	if records == nil {
		return nil, database.ErrNotFound
	}

	raw := records.Get(recordID[:])
	if raw == nil {
		return nil, database.ErrNotFound
	}

	var doc recordDoc
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Deleted && !withDeleted {
		return nil, database.ErrNotFound
	}

	return &doc, nil
}

func (s *Store) FindRecord(_ context.Context, arg database.FindRecordParams) (database.Record, error) {
	var record database.Record
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		doc, err := getRecordDoc(btx, arg.TableID, arg.RecordID, arg.WithDeleted)
		if err != nil {
			return err
		}
		record = doc.toRecord(arg.RecordID, arg.TableID, arg.Fields)
		return nil
	})
	return record, err
}

// ListRecords scans the live records of the table in creation order.
func (s *Store) ListRecords(_ context.Context, arg database.ListRecordsParams) ([]database.Record, int64, error) {
	records := make([]database.Record, 0)
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		buck := tableRecordsBucket(btx, arg.TableID)
		if buck == nil {
			return nil
		}

		return buck.ForEach(func(k, v []byte) error {
			var doc recordDoc
			if err := decode(v, &doc); err != nil {
				return err
			}
			if doc.Deleted {
				return nil
			}

			id, err := uuid.FromBytes(k)
			if err != nil {
				return err
			}
			records = append(records, doc.toRecord(id, arg.TableID, arg.Fields))
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	page, total := database.SelectRecords(records, arg)
	return page, total, nil
}

func (s *Store) ExistsLiveValue(_ context.Context, arg database.ExistsLiveValueParams) (bool, error) {
	exists := false
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		unique := tableUniqueBucket(btx, arg.TableID)
		if unique == nil {
			return nil
		}

		key := engine.UniqueValue{FieldKey: arg.FieldKey, Value: arg.Value}.Key()
		owner := unique.Get([]byte(key))
		exists = owner != nil && !bytes.Equal(owner, arg.ExcludeRecordID[:])
		return nil
	})
	return exists, err
}

func (s *Store) UpdateRecord(_ context.Context, arg database.UpdateRecordParams) (database.Record, error) {
	var record database.Record
	err := s.bdb.Update(func(btx *bbolt.Tx) error {
		doc, err := getRecordDoc(btx, arg.TableID, arg.RecordID, false)
		if err != nil {
			return err
		}

		current := engine.DecodePayload(doc.Payload, arg.Fields)
		next := arg.Payload
		if arg.Merge {
			next = current.Merge(arg.Payload)
		}

		if err := swapUniqueKeys(
			tableUniqueBucket(btx, arg.TableID),
			arg.RecordID,
			database.UniqueIndexKeys(arg.Fields, current),
			database.UniqueIndexKeys(arg.Fields, next),
		); err != nil {
			return err
		}

		doc.Payload = next.Map()
		doc.UpdatedAt = now()
		if err := putDoc(tableRecordsBucket(btx, arg.TableID), arg.RecordID, doc); err != nil {
			return err
		}

		record = doc.toRecord(arg.RecordID, arg.TableID, arg.Fields)
		return nil
	})
	return record, err
}

// swapUniqueKeys moves the index entries of a record from its previous unique
// values to the next ones.
func swapUniqueKeys(unique *bbolt.Bucket, recordID uuid.UUID, prev, next map[string]engine.UniqueValue) error {
	for key, value := range next {
		owner := unique.Get([]byte(key))
		if owner != nil && !bytes.Equal(owner, recordID[:]) {
			return database.NewUniqueViolationError(value)
		}
	}

	for key := range prev {
		if _, ok := next[key]; ok {
			continue
		}
		if bytes.Equal(unique.Get([]byte(key)), recordID[:]) {
			if err := unique.Delete([]byte(key)); err != nil {
				return err
			}
		}
	}
	for key := range next {
		if err := unique.Put([]byte(key), recordID[:]); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) DeleteRecord(_ context.Context, arg database.DeleteRecordParams) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		doc, err := getRecordDoc(btx, arg.TableID, arg.RecordID, false)
		if err != nil {
			return err
		}

		if err := swapUniqueKeys(
			tableUniqueBucket(btx, arg.TableID),
			arg.RecordID,
			database.UniqueIndexKeys(arg.Fields, engine.DecodePayload(doc.Payload, arg.Fields)),
			nil,
		); err != nil {
			return err
		}

		doc.Deleted = true
		doc.UpdatedAt = now()
		return putDoc(tableRecordsBucket(btx, arg.TableID), arg.RecordID, doc)
	})
}
