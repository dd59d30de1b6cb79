package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	recipientIndex = "recipient-index"
	dateIndex      = "date-index"
)

// DynamoAPI is the slice of the DynamoDB client the adapter uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type DynamoStore struct {
	client DynamoAPI
	table  *string
}

func NewDynamoStore(client DynamoAPI, table *string) *DynamoStore {
	return &DynamoStore{
		client: client,
		table:  table,
	}
}

// Put implements Store.
func (s *DynamoStore) Put(ctx context.Context, rec *model.UploadRecord) error {
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal upload record, %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("file_id"))

	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression, %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 s.table,
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return apperr.Wrap(apperr.Conflict, apperr.CodeStoreUnavailable, "record already exists", err)
		}

		return apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to put upload record", err)
	}

	return nil
}

// Get implements Store.
func (s *DynamoStore) Get(ctx context.Context, fileID string) (*model.UploadRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: s.table,
		Key:       recordKey(fileID),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to get upload record", err)
	}

	if out.Item == nil {
		return nil, nil
	}

	var rec model.UploadRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload record, %w", err)
	}

	return &rec, nil
}

// ConditionalUpdate implements Store.
func (s *DynamoStore) ConditionalUpdate(ctx context.Context, fileID, expectedState string, patch StatePatch) error {
	update := expression.Set(expression.Name("state"), expression.Value(patch.State))
	if patch.ReadyAt != 0 {
		update = update.Set(expression.Name("ready_at"), expression.Value(patch.ReadyAt))
	}

	cond := expression.Equal(expression.Name("state"), expression.Value(expectedState))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression, %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 s.table,
		Key:                       recordKey(fileID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return apperr.Wrap(apperr.Conflict, apperr.CodeStoreUnavailable, "state changed concurrently", err)
		}

		return apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to update upload record", err)
	}

	return nil
}

// SetNotificationStatus implements Store.
func (s *DynamoStore) SetNotificationStatus(ctx context.Context, fileID, expected, next string) error {
	update := expression.Set(expression.Name("notification_status"), expression.Value(next))
	cond := expression.Equal(expression.Name("notification_status"), expression.Value(expected))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression, %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 s.table,
		Key:                       recordKey(fileID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return apperr.Wrap(apperr.Conflict, apperr.CodeStoreUnavailable, "notification status changed concurrently", err)
		}

		return apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to update notification status", err)
	}

	return nil
}

// RecordDownload implements Store. The counter is additive without a
// condition, so concurrent downloads never conflict with each other or
// with state transitions.
func (s *DynamoStore) RecordDownload(ctx context.Context, fileID string, at time.Time) error {
	update := expression.
		Add(expression.Name("download_count"), expression.Value(1)).
		Set(expression.Name("last_download_at"), expression.Value(at.Unix()))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression, %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 s.table,
		Key:                       recordKey(fileID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to record download", err)
	}

	return nil
}

// QueryByRecipient implements Store.
func (s *DynamoStore) QueryByRecipient(ctx context.Context, recipient string, limit int32) ([]model.UploadRecord, error) {
	keyCond := expression.Key("recipient_email").Equal(expression.Value(recipient))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression, %w", err)
	}

	return s.query(ctx, &dynamodb.QueryInput{
		TableName:                 s.table,
		IndexName:                 aws.String(recipientIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
	})
}

// QueryByDate implements Store. date is the yyyy-mm-dd partition written
// at intake.
func (s *DynamoStore) QueryByDate(ctx context.Context, date string, limit int32) ([]model.UploadRecord, error) {
	keyCond := expression.Key("upload_date").Equal(expression.Value(date))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression, %w", err)
	}

	return s.query(ctx, &dynamodb.QueryInput{
		TableName:                 s.table,
		IndexName:                 aws.String(dateIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
	})
}

func (s *DynamoStore) query(ctx context.Context, in *dynamodb.QueryInput) ([]model.UploadRecord, error) {
	out, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to query upload records", err)
	}

	var recs []model.UploadRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload records, %w", err)
	}

	return recs, nil
}

func recordKey(fileID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"file_id": &types.AttributeValueMemberS{Value: fileID},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

var _ Store = (*DynamoStore)(nil)
