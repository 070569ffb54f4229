// internal/auditstore/dynamodb.go
package auditstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/user/hydrolix-assistant/internal/types"
)

// dynamoAPI is the subset of the DynamoDB client used by the store.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore persists records to a DynamoDB table with partition key "id"
// (the turn ID) and sort key "my_timestamp".
type DynamoStore struct {
	client dynamoAPI
	table  string
	now    func() time.Time

	mu        sync.Mutex
	lastStamp map[types.TurnID]int64
}

// NewDynamoStore creates a store backed by the given table.
func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, now: time.Now}
}

// Put appends a record to the table. Identical wall-clock timestamps within
// a turn are disambiguated with a monotonic bump: (id, my_timestamp) is the
// table's composite key, and PutItem replaces rather than appends on a key
// collision, which would drop a record and misalign the positional pairing
// with the turn's execution records.
func (s *DynamoStore) Put(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	stampRecord(rec, s.now())
	if s.lastStamp == nil {
		s.lastStamp = make(map[types.TurnID]int64)
	}
	if last := s.lastStamp[rec.TurnID]; rec.Timestamp <= last {
		rec.Timestamp = last + 1
	}
	s.lastStamp[rec.TurnID] = rec.Timestamp
	s.mu.Unlock()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}

	slog.Debug("saved query result",
		"turn_id", string(rec.TurnID),
		"agent", rec.AgentName,
		"table", s.table,
	)
	return nil
}

// ResultsForTurn returns the turn's records in execution order. Pagination
// is followed until the query is exhausted.
func (s *DynamoStore) ResultsForTurn(ctx context.Context, turnID types.TurnID) ([]Record, error) {
	var records []Record
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("id = :id"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":id": &ddbtypes.AttributeValueMemberS{Value: string(turnID)},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}

		page := make([]Record, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
		records = append(records, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	// The sort key already orders within a page; keep the guarantee across
	// pages too.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}
