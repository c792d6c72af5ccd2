// Where: internal/app/deps.go
// What: Dependency wiring for AWS-facing command execution.
// Why: Centralize client construction behind factories the tests can swap.
package app

import (
	"context"

	"github.com/apex/log"

	"github.com/triadops/deploykit/internal/awsclient"
	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/frontend"
	"github.com/triadops/deploykit/internal/localdev"
	"github.com/triadops/deploykit/internal/rotation"
	"github.com/triadops/deploykit/internal/tables"
)

// RotationManager is the bucket rotation surface commands consume.
// Implemented by rotation.Manager.
type RotationManager interface {
	BucketName(thousands, number int) string
	ListProjectBuckets(ctx context.Context) []rotation.Bucket
	FindNextBucketNumber(ctx context.Context) (thousands, number int)
	CreateNextBucket(ctx context.Context) (string, error)
	CleanupOldBuckets(ctx context.Context) []string
	GetLatestBucket(ctx context.Context) string
	RotateAndCreate(ctx context.Context) (string, error)
}

// TableManager is the DynamoDB surface commands consume.
// Implemented by tables.Manager.
type TableManager interface {
	TableName(resource string) (string, error)
	EnsureAll(ctx context.Context, defs []config.TableConfig) ([]tables.EnsureResult, error)
	List(ctx context.Context) ([]string, error)
	SeedFromFile(ctx context.Context, resource, path string) (int, error)
}

// SiteDeployer is the frontend deployment surface commands consume.
// Implemented by frontend.Deployer.
type SiteDeployer interface {
	Deploy(ctx context.Context, input frontend.DeployInput) (frontend.DeployResult, error)
}

// Factories build the per-target implementations. Production factories
// construct AWS clients for the target's region and profile; tests return
// fakes.
type (
	RotationFactory func(ctx context.Context, target Target) (RotationManager, error)
	TablesFactory   func(ctx context.Context, target Target) (TableManager, error)
	DeployerFactory func(ctx context.Context, target Target) (SiteDeployer, error)
	DockerFactory   func() (localdev.DockerClient, error)
	ProberFactory   func(ctx context.Context, target Target, endpoint string) (localdev.TablesProber, error)
	AccountResolver func(ctx context.Context, target Target) (string, error)
)

type BucketDeps struct {
	Manager RotationFactory
}

type TablesDeps struct {
	Manager TablesFactory
}

type FrontendDeps struct {
	Deployer DeployerFactory
}

type LocalDeps struct {
	Docker DockerFactory
	Prober ProberFactory
}

type IdentityDeps struct {
	Account AccountResolver
}

// NewRotationFactory returns the production rotation factory. The account
// ID lookup is best effort; rotation itself never needs it.
func NewRotationFactory(logger log.Interface) RotationFactory {
	return func(ctx context.Context, target Target) (RotationManager, error) {
		factory, err := awsclient.NewFactory(ctx, awsclient.Options{
			Region:  target.Region,
			Profile: target.Profile,
		})
		if err != nil {
			return nil, err
		}

		accountID, _ := awsclient.AccountID(ctx, factory.STS())

		return rotation.NewManager(factory.S3(), rotation.Config{
			ProjectName: target.Project,
			Environment: target.Environment,
			Region:      target.Region,
			AccountID:   accountID,
			Logger:      logger,
		}), nil
	}
}

// NewTablesFactory returns the production table manager factory. A target
// with a DynamoDB endpoint override talks to that endpoint instead of AWS.
func NewTablesFactory(logger log.Interface) TablesFactory {
	return func(ctx context.Context, target Target) (TableManager, error) {
		factory, err := awsclient.NewFactory(ctx, awsclient.Options{
			Region:         target.Region,
			Profile:        target.Profile,
			DynamoEndpoint: target.DynamoEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return tables.NewManager(factory.DynamoDB(), target.Project, target.Environment, logger), nil
	}
}

// NewDeployerFactory returns the production frontend deployer factory.
func NewDeployerFactory(logger log.Interface) DeployerFactory {
	return func(ctx context.Context, target Target) (SiteDeployer, error) {
		factory, err := awsclient.NewFactory(ctx, awsclient.Options{
			Region:  target.Region,
			Profile: target.Profile,
		})
		if err != nil {
			return nil, err
		}
		return frontend.NewDeployer(factory.S3(), factory.CloudFront(), target.Project, target.Environment, logger), nil
	}
}

// NewLocalProber returns the production readiness prober for the local
// DynamoDB stack. The dummy credentials come from the endpoint override.
func NewLocalProber() ProberFactory {
	return func(ctx context.Context, target Target, endpoint string) (localdev.TablesProber, error) {
		factory, err := awsclient.NewFactory(ctx, awsclient.Options{
			Region:         target.Region,
			DynamoEndpoint: endpoint,
		})
		if err != nil {
			return nil, err
		}
		return factory.DynamoDB(), nil
	}
}

// NewAccountResolver returns the production STS-backed account lookup.
func NewAccountResolver() AccountResolver {
	return func(ctx context.Context, target Target) (string, error) {
		factory, err := awsclient.NewFactory(ctx, awsclient.Options{
			Region:  target.Region,
			Profile: target.Profile,
		})
		if err != nil {
			return "", err
		}
		return awsclient.AccountID(ctx, factory.STS())
	}
}
