package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func LoadAwsConfig(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	return cfg, nil
}

func NewS3Client(ctx context.Context, cfg aws.Config) (*s3.Client, error) {
	return s3.NewFromConfig(cfg), nil
}

// NewDynamoDBClient builds a client, pointing it at a local endpoint when one
// is configured
func NewDynamoDBClient(ctx context.Context, c DynamoDBConfig) (*dynamodb.Client, error) {
	cfg, err := LoadAwsConfig(ctx, c.Region)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	}), nil
}
