package dynamodb

import (
	"context"
	"strconv"
	"time"

	"github.com/agencyops/agencyops/internal/domain/sequence"
	ddb "github.com/agencyops/agencyops/internal/dynamodb"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type counterItem struct {
	Name      string    `dynamodbav:"pk"`
	Value     int64     `dynamodbav:"value"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

type sequenceRepository struct {
	client *ddb.Client
	logger *logger.Logger
}

// NewSequenceRepository keeps counters in a DynamoDB table keyed by name
func NewSequenceRepository(client *ddb.Client, logger *logger.Logger) sequence.Repository {
	return &sequenceRepository{client: client, logger: logger}
}

func (r *sequenceRepository) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		ddb.CounterKeyAttribute: &types.AttributeValueMemberS{Value: name},
	}
}

// Next uses ADD, which DynamoDB applies atomically and which treats a missing
// attribute as zero
func (r *sequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	span := sentryService.StartRepositorySpan(ctx, "dynamodb", "counter", "next", map[string]interface{}{"key": key})
	defer sentryService.FinishSpan(span)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	out, err := r.client.DB().UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.client.TableName()),
		Key:              r.key(key),
		UpdateExpression: aws.String("ADD #v :one SET #u = :now, #c = if_not_exists(#c, :now)"),
		ExpressionAttributeNames: map[string]string{
			"#v": "value",
			"#u": "updated_at",
			"#c": "created_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":now": &types.AttributeValueMemberS{Value: now},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		sentryService.SetSpanError(span, err)
		return 0, ierr.WithError(err).
			WithHint("Counter increment failed").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}

	value, err := valueOf(out.Attributes)
	if err != nil {
		sentryService.SetSpanError(span, err)
		return 0, err
	}
	sentryService.SetSpanSuccess(span)

	r.logger.Debugw("allocated counter value", "key", key, "value", value)
	return value, nil
}

func (r *sequenceRepository) Current(ctx context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	out, err := r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.client.TableName()),
		Key:            r.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Counter lookup failed").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	if len(out.Item) == 0 {
		return 0, nil
	}

	var item counterItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Stored counter is corrupt").
			Mark(ierr.ErrDatabase)
	}
	return item.Value, nil
}

func valueOf(attrs map[string]types.AttributeValue) (int64, error) {
	n, ok := attrs["value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, ierr.NewError("counter value missing from update response").
			Mark(ierr.ErrDatabase)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return v, nil
}
