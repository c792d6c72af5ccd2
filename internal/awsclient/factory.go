// Where: internal/awsclient/factory.go
// What: AWS SDK client construction.
// Why: One place wires region, profile, and local endpoint overrides.
package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Options selects how clients are configured.
type Options struct {
	Region  string
	Profile string
	// DynamoEndpoint points table operations at a local DynamoDB when set.
	DynamoEndpoint string
}

// Factory hands out service clients sharing one resolved aws.Config.
type Factory struct {
	cfg            aws.Config
	dynamoEndpoint string
}

// NewFactory resolves the AWS configuration chain once for all clients.
func NewFactory(ctx context.Context, opts Options) (*Factory, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return &Factory{cfg: cfg, dynamoEndpoint: opts.DynamoEndpoint}, nil
}

// Region returns the resolved region.
func (f *Factory) Region() string {
	return f.cfg.Region
}

// S3 returns an S3 client.
func (f *Factory) S3() *s3.Client {
	return s3.NewFromConfig(f.cfg)
}

// DynamoDB returns a DynamoDB client. With a local endpoint configured
// the client targets it with static dummy credentials, matching what
// dynamodb-local expects.
func (f *Factory) DynamoDB() *dynamodb.Client {
	if f.dynamoEndpoint == "" {
		return dynamodb.NewFromConfig(f.cfg)
	}
	endpoint := f.dynamoEndpoint
	return dynamodb.NewFromConfig(f.cfg, func(options *dynamodb.Options) {
		options.BaseEndpoint = aws.String(endpoint)
		options.Credentials = credentials.NewStaticCredentialsProvider("dummy", "dummy", "")
	})
}

// STS returns an STS client.
func (f *Factory) STS() *sts.Client {
	return sts.NewFromConfig(f.cfg)
}

// CloudFront returns a CloudFront client.
func (f *Factory) CloudFront() *cloudfront.Client {
	return cloudfront.NewFromConfig(f.cfg)
}
