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

func (t *tableItem) toTable() (database.Table, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return database.Table{}, err
	}

	return database.Table{
		ID:        id,
		OwnerID:   t.OwnerID,
		Name:      t.Name,
		Fields:    t.Fields,
		Deleted:   t.Deleted,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func (s *Store) tableNameOps(ownerID, name, tableID string) (writeOp, error) {
	sentinel, err := attributevalue.MarshalMap(uniqueItem{
		PK:      tableNamePK(ownerID, name),
		SK:      uniqueSK,
		Type:    itemTypeUnique,
		TableID: tableID,
	})
	if err != nil {
		return writeOp{}, err
	}
	return s.putOp(sentinel, notExistsCondition, database.ErrTableNameTaken), nil
}

func (s *Store) CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error) {
	id, err := database.NewID()
	if err != nil {
		return database.Table{}, err
	}

	createdAt := now()
	item := tableItem{
		PK:        ownerPK(arg.OwnerID),
		SK:        tableSK(id.String()),
		Type:      itemTypeTable,
		ID:        id.String(),
		OwnerID:   arg.OwnerID,
		Name:      arg.Name,
		Fields:    arg.Fields,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return database.Table{}, err
	}

	nameOp, err := s.tableNameOps(arg.OwnerID, arg.Name, item.ID)
	if err != nil {
		return database.Table{}, err
	}

	if err := s.transact(ctx, []writeOp{
		s.putOp(av, notExistsCondition, nil),
		nameOp,
	}); err != nil {
		return database.Table{}, err
	}

	return item.toTable()
}

func (s *Store) getLiveTable(ctx context.Context, id uuid.UUID, ownerID string) (*tableItem, error) {
	out, err := s.client.GetItem(ctx, &ddb.GetItemInput{
		TableName:      s.tableName,
		Key:            itemKey(ownerPK(ownerID), tableSK(id.String())),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, database.ErrNotFound
	}

	var item tableItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	if item.Deleted {
		return nil, database.ErrNotFound
	}

	return &item, nil
}

func (s *Store) FindTableByIDAndOwnerID(ctx context.Context, id uuid.UUID, ownerID string) (database.Table, error) {
	item, err := s.getLiveTable(ctx, id, ownerID)
	if err != nil {
		return database.Table{}, err
	}
	return item.toTable()
}

// queryLive pages through the live items of a partition whose sort key starts
// with the prefix.
func (s *Store) queryLive(ctx context.Context, pk, skPrefix string, newestFirst bool) ([]map[string]types.AttributeValue, error) {
	items := make([]map[string]types.AttributeValue, 0)
	input := &ddb.QueryInput{
		TableName:              s.tableName,
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		FilterExpression:       aws.String("#deleted = :false"),
		ExpressionAttributeNames: map[string]string{
			"#deleted": "deleted",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: skPrefix},
			":false":  &types.AttributeValueMemberBOOL{Value: false},
		},
		ConsistentRead:   aws.Bool(true),
		ScanIndexForward: aws.Bool(!newestFirst),
	}

	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *Store) ListTablesByOwnerID(ctx context.Context, ownerID string) ([]database.Table, error) {
	raw, err := s.queryLive(ctx, ownerPK(ownerID), tableSK(""), true)
	if err != nil {
		return nil, err
	}

	var items []tableItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, err
	}

	tables := make([]database.Table, 0, len(items))
	for i := range items {
		table, err := items[i].toTable()
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func (s *Store) liveRecordItems(ctx context.Context, tableID string) ([]recordItem, error) {
	raw, err := s.queryLive(ctx, tablePK(tableID), recordSK(""), false)
	if err != nil {
		return nil, err
	}

	var items []recordItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateTable replaces the name and fields of a table and moves the unique
// value sentinels of its live records to the new primary fields.
func (s *Store) UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error) {
	current, err := s.getLiveTable(ctx, arg.ID, arg.OwnerID)
	if err != nil {
		return database.Table{}, err
	}

	records, err := s.liveRecordItems(ctx, current.ID)
	if err != nil {
		return database.Table{}, err
	}

	prev := make(map[string]string)
	next := make(map[string]string)
	nextValues := make(map[string]engine.UniqueValue)
	for i := range records {
		r := &records[i]
		for key := range database.UniqueIndexKeys(current.Fields, engine.DecodePayload(r.Payload, current.Fields)) {
			prev[key] = r.ID
		}
		for key, value := range database.UniqueIndexKeys(arg.Fields, engine.DecodePayload(r.Payload, arg.Fields)) {
			if _, ok := next[key]; ok {
				return database.Table{}, database.NewUniqueViolationError(value)
			}
			next[key] = r.ID
			nextValues[key] = value
		}
	}

	item := *current
	item.Name = arg.Name
	item.Fields = arg.Fields
	item.UpdatedAt = now()
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return database.Table{}, err
	}

	ops := []writeOp{s.putOp(av, liveCondition, database.ErrNotFound)}
	if current.Name != arg.Name {
		nameOp, err := s.tableNameOps(arg.OwnerID, arg.Name, item.ID)
		if err != nil {
			return database.Table{}, err
		}
		ops = append(ops, nameOp, s.deleteOp(tableNamePK(current.OwnerID, current.Name), uniqueSK))
	}

	for key, recordID := range prev {
		if next[key] != recordID {
			ops = append(ops, s.deleteOp(uniquePK(item.ID, key), uniqueSK))
		}
	}
	for key, recordID := range next {
		if prev[key] == recordID {
			continue
		}
		op, err := s.uniqueOp(item.ID, recordID, nextValues[key])
		if err != nil {
			return database.Table{}, err
		}
		ops = append(ops, op)
	}

	if err := s.transact(ctx, ops); err != nil {
		return database.Table{}, err
	}
	return item.toTable()
}

// DeleteTable flags the table and then its live records as deleted. The
// table flag and the first records are written together, the remaining
// records in further transactions.
func (s *Store) DeleteTable(ctx context.Context, id uuid.UUID, ownerID string) (int64, error) {
	current, err := s.getLiveTable(ctx, id, ownerID)
	if err != nil {
		return 0, err
	}

	records, err := s.liveRecordItems(ctx, current.ID)
	if err != nil {
		return 0, err
	}

	at := now()
	ops := []writeOp{
		s.softDeleteOp(ownerPK(ownerID), tableSK(current.ID), at, database.ErrNotFound),
		s.deleteOp(tableNamePK(current.OwnerID, current.Name), uniqueSK),
	}
	for i := range records {
		r := &records[i]
		ops = append(ops, s.softDeleteOp(tablePK(current.ID), recordSK(r.ID), at, nil))
		for key := range database.UniqueIndexKeys(current.Fields, engine.DecodePayload(r.Payload, current.Fields)) {
			ops = append(ops, s.deleteOp(uniquePK(current.ID, key), uniqueSK))
		}
	}

	if err := s.transact(ctx, ops); err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}
