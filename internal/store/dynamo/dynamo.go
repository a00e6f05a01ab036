// Package dynamo implements store.ItemStore on Amazon DynamoDB. Each
// resource uses its own table with a string partition key "id".
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/models"
	"blog-content-api/internal/store"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store is a DynamoDB-backed item store for one table.
type Store struct {
	client API
	table  string
	logger *logrus.Logger
}

var _ store.ItemStore = (*Store)(nil)

// New creates a store over the given table.
func New(client API, table string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		client: client,
		table:  table,
		logger: logger,
	}
}

// Get implements store.ItemStore.
func (s *Store) Get(ctx context.Context, id string) (models.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(id),
	})
	if err != nil {
		return nil, s.fail("get", id, err)
	}
	if len(out.Item) == 0 {
		return nil, store.NewStoreError("get", s.table, id, store.ErrNotFound)
	}

	item, err := decode(out.Item)
	if err != nil {
		return nil, store.NewStoreError("get", s.table, id, err)
	}
	return item, nil
}

// Put implements store.ItemStore.
func (s *Store) Put(ctx context.Context, item models.Item) error {
	id := item.ID()
	if id == "" {
		return store.NewStoreError("put", s.table, "", store.ErrInvalidItem)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return store.NewStoreError("put", s.table, id, fmt.Errorf("marshal item: %w", err))
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return s.fail("put", id, err)
	}
	return nil
}

// UpdateFields implements store.ItemStore. The write is conditioned on the
// record existing so a missing id never creates a partial item.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (models.Item, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != models.FieldID {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return s.Get(ctx, id)
	}
	sort.Strings(keys)

	var update expression.UpdateBuilder
	for _, k := range keys {
		update = update.Set(expression.Name(k), expression.Value(fields[k]))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(models.FieldID))).
		Build()
	if err != nil {
		return nil, store.NewStoreError("update", s.table, id, fmt.Errorf("build expression: %w", err))
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, store.NewStoreError("update", s.table, id, store.ErrNotFound)
		}
		return nil, s.fail("update", id, err)
	}

	item, err := decode(out.Attributes)
	if err != nil {
		return nil, store.NewStoreError("update", s.table, id, err)
	}
	return item, nil
}

// Delete implements store.ItemStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(id),
	})
	if err != nil {
		return s.fail("delete", id, err)
	}
	return nil
}

// ScanAll implements store.ItemStore. Pages are followed until the table is
// exhausted; callers never see a pagination token.
func (s *Store) ScanAll(ctx context.Context) ([]models.Item, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	var items []models.Item
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.fail("scan", "", err)
		}
		for _, av := range page.Items {
			item, err := decode(av)
			if err != nil {
				return nil, store.NewStoreError("scan", s.table, "", err)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Store) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.FieldID: &types.AttributeValueMemberS{Value: id},
	}
}

func (s *Store) fail(op, id string, err error) error {
	fields := logrus.Fields{
		"table": s.table,
		"op":    op,
	}
	if id != "" {
		fields["id"] = id
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields["aws_error_code"] = apiErr.ErrorCode()
	}
	s.logger.WithFields(fields).WithError(err).Warn("DynamoDB request failed")

	return store.NewStoreError(op, s.table, id, err)
}

func decode(av map[string]types.AttributeValue) (models.Item, error) {
	item := models.Item{}
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return item, nil
}
