package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/report"
)

// Credentials are the static AWS keys read from the secret store
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Sink writes reports into a DynamoDB table, one PutItem per report
type Sink struct {
	client putItemAPI
	table  string
	logger *logger.Logger
}

// Verify that Sink implements report.Sink
var _ report.Sink = (*Sink)(nil)

// NewSink creates a DynamoDB sink authenticated with static credentials
func NewSink(ctx context.Context, cfg *config.Config, creds Credentials, log *logger.Logger) (*Sink, error) {
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, errors.New("aws access key id and secret access key are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &Sink{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  cfg.AWS.TableName,
		logger: log,
	}, nil
}

// Put writes the report unconditionally; an existing item with the same
// report_date is replaced.
func (s *Sink) Put(ctx context.Context, r *report.CostReport) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid report: %w", err)
	}

	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item into %s: %w", s.table, err)
	}

	s.logger.Debug("Report written", "table", s.table, "report_date", r.ReportDate)
	return nil
}
