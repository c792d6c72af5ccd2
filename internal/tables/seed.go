// Where: internal/tables/seed.go
// What: Seed data loading into DynamoDB tables.
// Why: Fresh environments and the local stack start from fixture items.
package tables

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	batchWriteLimit  = 25
	maxBatchAttempts = 3
)

// SeedFromFile loads a JSON array of items into the resource's table.
// Returns the number of items written.
func (m *Manager) SeedFromFile(ctx context.Context, resource, path string) (int, error) {
	name, err := m.TableName(resource)
	if err != nil {
		return 0, err
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var items []map[string]any
	if err := json.Unmarshal(payload, &items); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	written := 0
	for start := 0; start < len(items); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(items) {
			end = len(items)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			attrs, err := attributevalue.MarshalMap(item)
			if err != nil {
				return written, fmt.Errorf("marshal seed item: %w", err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: attrs},
			})
		}
		if err := m.batchWrite(ctx, name, requests); err != nil {
			return written, err
		}
		written += end - start
	}

	m.log.WithFields(log.Fields{"table": name, "items": written}).Info("seeded table")
	return written, nil
}

// batchWrite retries unprocessed items, which DynamoDB returns under
// throttling even on a successful call.
func (m *Manager) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	for attempt := 0; len(requests) > 0; attempt++ {
		if attempt == maxBatchAttempts {
			return fmt.Errorf("seed %s: %d unprocessed items after %d attempts", table, len(requests), attempt)
		}
		resp, err := m.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: requests},
		})
		if err != nil {
			return err
		}
		requests = resp.UnprocessedItems[table]
	}
	return nil
}
