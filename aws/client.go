// Package aws defines functions used to interact with the AWS API
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Clients bundles every AWS client the service talks to, built from a
// single shared configuration.
type Clients struct {
	S3       *s3.Client
	Presign  *s3.PresignClient
	DynamoDB *dynamodb.Client
	SQS      *sqs.Client
	Bucket   *string
	Table    *string
}

func NewClients(ctx context.Context) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(viper.GetString("aws.region")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))
	table := aws.String(viper.GetString("aws.table"))

	s3c := s3.NewFromConfig(cfg)

	_, err = s3c.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	ddb := dynamodb.NewFromConfig(cfg)

	_, err = ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: table,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "ResourceNotFoundException" {
				return nil, fmt.Errorf("table '%s' does not exist", *table)
			}
		}

		return nil, fmt.Errorf("failed to check if table exists, %w", err)
	}

	return &Clients{
		S3:       s3c,
		Presign:  s3.NewPresignClient(s3c),
		DynamoDB: ddb,
		SQS:      sqs.NewFromConfig(cfg),
		Bucket:   bucket,
		Table:    table,
	}, nil
}
