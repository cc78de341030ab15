// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

func (r *recordItem) toRecord(fields []engine.Field) (database.Record, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return database.Record{}, err
	}
	tableID, err := uuid.Parse(r.TableID)
	if err != nil {
		return database.Record{}, err
	}

	return database.Record{
		ID:        id,
		TableID:   tableID,
		OwnerID:   r.OwnerID,
		Payload:   engine.DecodePayload(r.Payload, fields),
		Deleted:   r.Deleted,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// uniqueOp claims a unique value for a record. The claim fails when another
// record holds the sentinel.
func (s *Store) uniqueOp(tableID, recordID string, value engine.UniqueValue) (writeOp, error) {
	sentinel, err := attributevalue.MarshalMap(uniqueItem{
		PK:       uniquePK(tableID, value.Key()),
		SK:       uniqueSK,
		Type:     itemTypeUnique,
		TableID:  tableID,
		FieldKey: value.FieldKey,
		RecordID: recordID,
	})
	if err != nil {
		return writeOp{}, err
	}

	return writeOp{
		item: types.TransactWriteItem{Put: &types.Put{
			TableName:                s.tableName,
			Item:                     sentinel,
			ConditionExpression:      aws.String("attribute_not_exists(pk) OR #recordId = :recordId"),
			ExpressionAttributeNames: map[string]string{"#recordId": "recordId"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":recordId": &types.AttributeValueMemberS{Value: recordID},
			},
		}},
		onConditionFailed: database.NewUniqueViolationError(value),
	}, nil
}

func (s *Store) CreateRecord(ctx context.Context, arg database.CreateRecordParams) (database.Record, error) {
	id, err := database.NewID()
	if err != nil {
		return database.Record{}, err
	}

	createdAt := now()
	item := recordItem{
		PK:        tablePK(arg.TableID.String()),
		SK:        recordSK(id.String()),
		Type:      itemTypeRecord,
		ID:        id.String(),
		TableID:   arg.TableID.String(),
		OwnerID:   arg.OwnerID,
		Payload:   arg.Payload.Map(),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return database.Record{}, err
	}

	ops := []writeOp{
		{
			item: types.TransactWriteItem{ConditionCheck: &types.ConditionCheck{
				TableName:                 s.tableName,
				Key:                       itemKey(ownerPK(arg.OwnerID), tableSK(item.TableID)),
				ConditionExpression:       liveCondition,
				ExpressionAttributeNames:  deletedNames,
				ExpressionAttributeValues: falseValues,
			}},
			onConditionFailed: database.ErrNotFound,
		},
		s.putOp(av, notExistsCondition, nil),
	}
	for _, value := range engine.UniqueValues(arg.Fields, arg.Payload) {
		op, err := s.uniqueOp(item.TableID, item.ID, value)
		if err != nil {
			return database.Record{}, err
		}
		ops = append(ops, op)
	}

	if err := s.transact(ctx, ops); err != nil {
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

func (s *Store) getRecordItem(ctx context.Context, tableID, recordID uuid.UUID, withDeleted bool) (*recordItem, error) {
	out, err := s.client.GetItem(ctx, &ddb.GetItemInput{
		TableName:      s.tableName,
		Key:            itemKey(tablePK(tableID.String()), recordSK(recordID.String())),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, database.ErrNotFound
	}

	var item recordItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	if item.Deleted && !withDeleted {
		return nil, database.ErrNotFound
	}

	return &item, nil
}

func (s *Store) FindRecord(ctx context.Context, arg database.FindRecordParams) (database.Record, error) {
	item, err := s.getRecordItem(ctx, arg.TableID, arg.RecordID, arg.WithDeleted)
	if err != nil {
		return database.Record{}, err
	}
	return item.toRecord(arg.Fields)
}

// ListRecords reads the live records of the table in creation order and
// applies the query in memory.
func (s *Store) ListRecords(ctx context.Context, arg database.ListRecordsParams) ([]database.Record, int64, error) {
	items, err := s.liveRecordItems(ctx, arg.TableID.String())
	if err != nil {
		return nil, 0, err
	}

	records := make([]database.Record, 0, len(items))
	for i := range items {
		record, err := items[i].toRecord(arg.Fields)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	page, total := database.SelectRecords(records, arg)
	return page, total, nil
}

func (s *Store) ExistsLiveValue(ctx context.Context, arg database.ExistsLiveValueParams) (bool, error) {
	key := engine.UniqueValue{FieldKey: arg.FieldKey, Value: arg.Value}.Key()
	out, err := s.client.GetItem(ctx, &ddb.GetItemInput{
		TableName:      s.tableName,
		Key:            itemKey(uniquePK(arg.TableID.String(), key), uniqueSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if out.Item == nil {
		return false, nil
	}

	var sentinel uniqueItem
	if err := attributevalue.UnmarshalMap(out.Item, &sentinel); err != nil {
		return false, err
	}
	return sentinel.RecordID != arg.ExcludeRecordID.String(), nil
}

func (s *Store) UpdateRecord(ctx context.Context, arg database.UpdateRecordParams) (database.Record, error) {
	item, err := s.getRecordItem(ctx, arg.TableID, arg.RecordID, false)
	if err != nil {
		return database.Record{}, err
	}

	current := engine.DecodePayload(item.Payload, arg.Fields)
	next := arg.Payload
	if arg.Merge {
		next = current.Merge(arg.Payload)
	}

	item.Payload = next.Map()
	item.UpdatedAt = now()
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return database.Record{}, err
	}

	ops := []writeOp{s.putOp(av, liveCondition, database.ErrNotFound)}
	prev := database.UniqueIndexKeys(arg.Fields, current)
	nextKeys := database.UniqueIndexKeys(arg.Fields, next)
	for key := range prev {
		if _, ok := nextKeys[key]; !ok {
			ops = append(ops, s.deleteOp(uniquePK(item.TableID, key), uniqueSK))
		}
	}
	for key, value := range nextKeys {
		if _, ok := prev[key]; ok {
			continue
		}
		op, err := s.uniqueOp(item.TableID, item.ID, value)
		if err != nil {
			return database.Record{}, err
		}
		ops = append(ops, op)
	}

	if err := s.transact(ctx, ops); err != nil {
		return database.Record{}, err
	}
	return item.toRecord(arg.Fields)
}

func (s *Store) DeleteRecord(ctx context.Context, arg database.DeleteRecordParams) error {
	item, err := s.getRecordItem(ctx, arg.TableID, arg.RecordID, false)
	if err != nil {
		return err
	}

	ops := []writeOp{
		s.softDeleteOp(item.PK, item.SK, now(), database.ErrNotFound),
	}
	for key := range database.UniqueIndexKeys(arg.Fields, engine.DecodePayload(item.Payload, arg.Fields)) {
		ops = append(ops, s.deleteOp(uniquePK(item.TableID, key), uniqueSK))
	}

	return s.transact(ctx, ops)
}
