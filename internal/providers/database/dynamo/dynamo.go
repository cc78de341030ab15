// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dynamo stores tables and records in a single DynamoDB table.
// Unique values and table names are claimed with sentinel items written in
// the same TransactWriteItems call as the item they belong to.
package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

const (
	maxTransactItems int = 100

	itemTypeTable  string = "table"
	itemTypeRecord string = "record"
	itemTypeUnique string = "unique"

	conditionFailedCode string = "ConditionalCheckFailed"
)

// Client is the subset of the DynamoDB API the store uses, satisfied by
// *dynamodb.Client and by test doubles.
type Client interface {
	GetItem(ctx context.Context, params *ddb.GetItemInput, optFns ...func(*ddb.Options)) (*ddb.GetItemOutput, error)
	Query(ctx context.Context, params *ddb.QueryInput, optFns ...func(*ddb.Options)) (*ddb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *ddb.TransactWriteItemsInput, optFns ...func(*ddb.Options)) (*ddb.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *ddb.CreateTableInput, optFns ...func(*ddb.Options)) (*ddb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *ddb.DescribeTableInput, optFns ...func(*ddb.Options)) (*ddb.DescribeTableOutput, error)
}

type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func NewClient(opts Options) *ddb.Client {
	clientOpts := ddb.Options{Region: opts.Region}
	if opts.Endpoint != "" {
		clientOpts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			Source:          "dataforge",
		}
		clientOpts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return creds, nil
			},
		))
	}
	return ddb.New(clientOpts)
}

type Store struct {
	client    Client
	tableName *string
}

var _ database.Store = (*Store)(nil)

func NewStore(client Client, tableName string) *Store {
	return &Store{client: client, tableName: aws.String(tableName)}
}

// EnsureTable creates the DynamoDB table with on demand billing when it does
// not exist yet.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &ddb.DescribeTableInput{TableName: s.tableName})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	_, err = s.client.CreateTable(ctx, &ddb.CreateTableInput{
		TableName:   s.tableName,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &ddb.DescribeTableInput{TableName: s.tableName})
	return err
}

func (s *Store) Close() error {
	return nil
}

func ownerPK(ownerID string) string {
	return "OWNER#" + ownerID
}

func tableSK(id string) string {
	return "TABLE#" + id
}

func tablePK(id string) string {
	return "TABLE#" + id
}

func recordSK(id string) string {
	return "RECORD#" + id
}

const uniqueSK string = "_unique#"

func tableNamePK(ownerID, name string) string {
	return "_unique#table#" + ownerID + "#" + name
}

func uniquePK(tableID, valueKey string) string {
	return "_unique#" + tableID + "#" + valueKey
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

type tableItem struct {
	PK        string         `dynamodbav:"pk"`
	SK        string         `dynamodbav:"sk"`
	Type      string         `dynamodbav:"_type"`
	ID        string         `dynamodbav:"id"`
	OwnerID   string         `dynamodbav:"ownerId"`
	Name      string         `dynamodbav:"name"`
	Fields    []engine.Field `dynamodbav:"fields"`
	Deleted   bool           `dynamodbav:"deleted"`
	CreatedAt time.Time      `dynamodbav:"createdAt"`
	UpdatedAt time.Time      `dynamodbav:"updatedAt"`
}

type recordItem struct {
	PK        string         `dynamodbav:"pk"`
	SK        string         `dynamodbav:"sk"`
	Type      string         `dynamodbav:"_type"`
	ID        string         `dynamodbav:"id"`
	TableID   string         `dynamodbav:"tableId"`
	OwnerID   string         `dynamodbav:"ownerId"`
	Payload   map[string]any `dynamodbav:"payload"`
	Deleted   bool           `dynamodbav:"deleted"`
	CreatedAt time.Time      `dynamodbav:"createdAt"`
	UpdatedAt time.Time      `dynamodbav:"updatedAt"`
}

type uniqueItem struct {
	PK       string `dynamodbav:"pk"`
	SK       string `dynamodbav:"sk"`
	Type     string `dynamodbav:"_type"`
	TableID  string `dynamodbav:"tableId"`
	FieldKey string `dynamodbav:"fieldKey,omitempty"`
	RecordID string `dynamodbav:"recordId,omitempty"`
}

// writeOp is one item of a write transaction, with the error to report when
// its condition is the one that cancelled the transaction.
type writeOp struct {
	item              types.TransactWriteItem
	onConditionFailed error
}

// transact runs the operations in transactions of at most maxTransactItems
// items. Only each chunk is atomic.
func (s *Store) transact(ctx context.Context, ops []writeOp) error {
	for start := 0; start < len(ops); start += maxTransactItems {
		chunk := ops[start:min(start+maxTransactItems, len(ops))]
		items := make([]types.TransactWriteItem, len(chunk))
		for i, op := range chunk {
			items[i] = op.item
		}

		if _, err := s.client.TransactWriteItems(ctx, &ddb.TransactWriteItemsInput{
			TransactItems: items,
		}); err != nil {
			return conditionError(err, chunk)
		}
	}
	return nil
}

func conditionError(err error, chunk []writeOp) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return err
	}

	for i, reason := range canceled.CancellationReasons {
		if i < len(chunk) && aws.ToString(reason.Code) == conditionFailedCode && chunk[i].onConditionFailed != nil {
			return chunk[i].onConditionFailed
		}
	}
	return err
}

var (
	notExistsCondition = aws.String("attribute_not_exists(pk)")
	liveCondition      = aws.String("attribute_exists(pk) AND #deleted = :false")
	deletedNames       = map[string]string{"#deleted": "deleted"}
	falseValues        = map[string]types.AttributeValue{":false": &types.AttributeValueMemberBOOL{Value: false}}
)

func (s *Store) putOp(item map[string]types.AttributeValue, condition *string, onConditionFailed error) writeOp {
	put := &types.Put{TableName: s.tableName, Item: item, ConditionExpression: condition}
	if condition == liveCondition {
		put.ExpressionAttributeNames = deletedNames
		put.ExpressionAttributeValues = falseValues
	}
	return writeOp{item: types.TransactWriteItem{Put: put}, onConditionFailed: onConditionFailed}
}

func (s *Store) deleteOp(pk, sk string) writeOp {
	return writeOp{item: types.TransactWriteItem{Delete: &types.Delete{
		TableName: s.tableName,
		Key:       itemKey(pk, sk),
	}}}
}

// softDeleteOp flags an item as deleted. The item must be live when
// onConditionFailed is set.
func (s *Store) softDeleteOp(pk, sk string, at time.Time, onConditionFailed error) writeOp {
	update := &types.Update{
		TableName:        s.tableName,
		Key:              itemKey(pk, sk),
		UpdateExpression: aws.String("SET #deleted = :true, #updatedAt = :now"),
		ExpressionAttributeNames: map[string]string{
			"#deleted":   "deleted",
			"#updatedAt": "updatedAt",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":now":  &types.AttributeValueMemberS{Value: at.Format(time.RFC3339Nano)},
		},
	}
	if onConditionFailed != nil {
		update.ConditionExpression = liveCondition
		update.ExpressionAttributeValues[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	return writeOp{item: types.TransactWriteItem{Update: update}, onConditionFailed: onConditionFailed}
}
