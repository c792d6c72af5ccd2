// Where: internal/tables/tables.go
// What: DynamoDB table provisioning from project config.
// Why: Tables carry environment-qualified names derived from the naming convention.
package tables

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/triadops/deploykit/internal/config"
	"github.com/triadops/deploykit/internal/naming"
)

const tableWaitTimeout = 2 * time.Minute

// DynamoAPI is the subset of the DynamoDB client the manager calls.
// Satisfied by *dynamodb.Client and by fakes in tests.
type DynamoAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Manager provisions and inspects a project's tables in one environment.
type Manager struct {
	ProjectName string
	Environment string

	client DynamoAPI
	log    log.Interface
}

// NewManager builds a Manager over the provided DynamoDB client.
func NewManager(client DynamoAPI, projectName, environment string, logger log.Interface) *Manager {
	if logger == nil {
		logger = log.Log
	}
	return &Manager{
		ProjectName: projectName,
		Environment: environment,
		client:      client,
		log:         logger,
	}
}

// EnsureResult reports the outcome for one configured table.
type EnsureResult struct {
	Resource  string
	TableName string
	Created   bool
}

// TableName derives the physical table name for a configured resource.
func (m *Manager) TableName(resource string) (string, error) {
	return naming.FormatResourceName(m.ProjectName, m.Environment, resource)
}

// EnsureAll creates every configured table that does not exist yet.
// Existing tables are left untouched.
func (m *Manager) EnsureAll(ctx context.Context, defs []config.TableConfig) ([]EnsureResult, error) {
	results := make([]EnsureResult, 0, len(defs))
	for _, def := range defs {
		name, err := m.TableName(def.Name)
		if err != nil {
			return results, err
		}
		created, err := m.ensureTable(ctx, name, def)
		if err != nil {
			return results, fmt.Errorf("ensure table %s: %w", name, err)
		}
		results = append(results, EnsureResult{Resource: def.Name, TableName: name, Created: created})
	}
	return results, nil
}

func (m *Manager) ensureTable(ctx context.Context, name string, def config.TableConfig) (bool, error) {
	_, err := m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err == nil {
		m.log.WithField("table", name).Debug("table exists")
		return false, nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return false, err
	}

	input, err := buildCreateTableInput(name, def)
	if err != nil {
		return false, err
	}
	if _, err := m.client.CreateTable(ctx, input); err != nil {
		return false, err
	}

	waiter := dynamodb.NewTableExistsWaiter(m.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, tableWaitTimeout); err != nil {
		return false, fmt.Errorf("wait for table: %w", err)
	}
	m.log.WithField("table", name).Info("created table")
	return true, nil
}

// List returns the physical names of this project/environment's tables.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	projectCode, err := naming.ProjectCode(m.ProjectName)
	if err != nil {
		return nil, err
	}
	envCode, err := naming.EnvironmentCode(m.Environment)
	if err != nil {
		return nil, err
	}
	prefix := projectCode + "-" + envCode + "-"

	var names []string
	var start *string
	for {
		resp, err := m.client.ListTables(ctx, &dynamodb.ListTablesInput{ExclusiveStartTableName: start})
		if err != nil {
			return nil, err
		}
		for _, name := range resp.TableNames {
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
			}
		}
		if resp.LastEvaluatedTableName == nil {
			break
		}
		start = resp.LastEvaluatedTableName
	}
	return names, nil
}

// buildCreateTableInput maps a table definition to the SDK input.
// Attribute definitions are derived from the key schema and index keys.
// Billing defaults to on-demand; configure PROVISIONED to use capacities.
func buildCreateTableInput(name string, def config.TableConfig) (*dynamodb.CreateTableInput, error) {
	billingMode, err := mapBillingMode(def.BillingMode)
	if err != nil {
		return nil, err
	}
	keySchema, err := mapKeySchema(def.HashKey, def.RangeKey)
	if err != nil {
		return nil, err
	}
	attrDefs, err := collectAttributeDefinitions(def)
	if err != nil {
		return nil, err
	}

	out := &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		KeySchema:            keySchema,
		AttributeDefinitions: attrDefs,
		BillingMode:          billingMode,
	}
	if billingMode == types.BillingModeProvisioned {
		out.ProvisionedThroughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(capacityOrDefault(def.ReadCapacity)),
			WriteCapacityUnits: aws.Int64(capacityOrDefault(def.WriteCapacity)),
		}
	}

	for _, idx := range def.GlobalIndexes {
		gsiKeySchema, err := mapKeySchema(idx.HashKey, idx.RangeKey)
		if err != nil {
			return nil, err
		}
		projection, err := mapProjection(idx)
		if err != nil {
			return nil, err
		}
		gsi := types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.Name),
			KeySchema:  gsiKeySchema,
			Projection: projection,
		}
		if billingMode == types.BillingModeProvisioned {
			gsi.ProvisionedThroughput = &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(capacityOrDefault(def.ReadCapacity)),
				WriteCapacityUnits: aws.Int64(capacityOrDefault(def.WriteCapacity)),
			}
		}
		out.GlobalSecondaryIndexes = append(out.GlobalSecondaryIndexes, gsi)
	}
	return out, nil
}

func mapBillingMode(value string) (types.BillingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PAY_PER_REQUEST", "":
		return types.BillingModePayPerRequest, nil
	case "PROVISIONED":
		return types.BillingModeProvisioned, nil
	default:
		return "", fmt.Errorf("unsupported billing mode: %s", value)
	}
}

func mapKeySchema(hashKey config.KeyConfig, rangeKey *config.KeyConfig) ([]types.KeySchemaElement, error) {
	if strings.TrimSpace(hashKey.Name) == "" {
		return nil, fmt.Errorf("hash key is required")
	}
	out := []types.KeySchemaElement{{
		AttributeName: aws.String(hashKey.Name),
		KeyType:       types.KeyTypeHash,
	}}
	if rangeKey != nil {
		out = append(out, types.KeySchemaElement{
			AttributeName: aws.String(rangeKey.Name),
			KeyType:       types.KeyTypeRange,
		})
	}
	return out, nil
}

func mapAttributeType(value string) (types.ScalarAttributeType, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "S", "":
		return types.ScalarAttributeTypeS, nil
	case "N":
		return types.ScalarAttributeTypeN, nil
	case "B":
		return types.ScalarAttributeTypeB, nil
	default:
		return "", fmt.Errorf("unsupported attribute type: %s", value)
	}
}

func mapProjection(idx config.IndexConfig) (*types.Projection, error) {
	out := &types.Projection{}
	switch strings.ToUpper(strings.TrimSpace(idx.Projection)) {
	case "", "ALL":
		out.ProjectionType = types.ProjectionTypeAll
	case "KEYS_ONLY":
		out.ProjectionType = types.ProjectionTypeKeysOnly
	case "INCLUDE":
		out.ProjectionType = types.ProjectionTypeInclude
		out.NonKeyAttributes = idx.NonKeyAttributes
	default:
		return nil, fmt.Errorf("unsupported projection type: %s", idx.Projection)
	}
	return out, nil
}

// collectAttributeDefinitions gathers every key attribute used by the
// table or its indexes. The same attribute declared with two different
// types is a config error.
func collectAttributeDefinitions(def config.TableConfig) ([]types.AttributeDefinition, error) {
	seen := map[string]string{}
	add := func(key config.KeyConfig) error {
		keyType := strings.ToUpper(strings.TrimSpace(key.Type))
		if keyType == "" {
			keyType = "S"
		}
		if existing, ok := seen[key.Name]; ok {
			if existing != keyType {
				return fmt.Errorf("attribute %s declared as both %s and %s", key.Name, existing, keyType)
			}
			return nil
		}
		seen[key.Name] = keyType
		return nil
	}

	if err := add(def.HashKey); err != nil {
		return nil, err
	}
	if def.RangeKey != nil {
		if err := add(*def.RangeKey); err != nil {
			return nil, err
		}
	}
	for _, idx := range def.GlobalIndexes {
		if err := add(idx.HashKey); err != nil {
			return nil, err
		}
		if idx.RangeKey != nil {
			if err := add(*idx.RangeKey); err != nil {
				return nil, err
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.AttributeDefinition, 0, len(names))
	for _, name := range names {
		attrType, err := mapAttributeType(seen[name])
		if err != nil {
			return nil, err
		}
		out = append(out, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: attrType,
		})
	}
	return out, nil
}

func capacityOrDefault(value int64) int64 {
	if value <= 0 {
		return 1
	}
	return value
}
