package dynamodb

import (
	"context"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// API is the subset of the DynamoDB client used for counters
type API interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// CounterKeyAttribute is the partition key of the counter table
const CounterKeyAttribute = "pk"

type Client struct {
	db        API
	tableName string
	logger    *logger.Logger
}

// NewClient returns nil when DynamoDB is not in use
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	if !cfg.DynamoDB.InUse {
		return nil, nil
	}

	db, err := config.NewDynamoDBClient(context.Background(), cfg.DynamoDB)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to load AWS SDK config").
			Mark(ierr.ErrSystem)
	}

	return NewClientWithAPI(db, cfg.DynamoDB.CounterTableName, log), nil
}

// NewClientWithAPI wraps an existing API implementation
func NewClientWithAPI(db API, tableName string, log *logger.Logger) *Client {
	return &Client{db: db, tableName: tableName, logger: log}
}

func (c *Client) DB() API {
	return c.db
}

func (c *Client) TableName() string {
	return c.tableName
}

// EnsureCounterTable creates the counter table on demand billing when it is
// missing
func (c *Client) EnsureCounterTable(ctx context.Context) error {
	_, err := c.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return ierr.WithError(err).
			WithHintf("Could not describe table %s", c.tableName).
			Mark(ierr.ErrDatabase)
	}

	_, err = c.db.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(CounterKeyAttribute), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(CounterKeyAttribute), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Could not create table %s", c.tableName).
			Mark(ierr.ErrDatabase)
	}

	c.logger.Infow("created dynamodb counter table", "table", c.tableName)
	return nil
}
