// Package auditstore persists the raw result of every executed analytics
// query, keyed by turn ID and timestamp, for audit trail and for
// re-attaching rows to the answer that triggered them.
package auditstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/hydrolix-assistant/internal/types"
)

// Record is one persisted query execution.
type Record struct {
	TurnID      types.TurnID `json:"id" dynamodbav:"id"`
	Timestamp   int64        `json:"my_timestamp" dynamodbav:"my_timestamp"`
	Datetime    string       `json:"datetime" dynamodbav:"datetime"`
	AgentName   string       `json:"agent_name,omitempty" dynamodbav:"agent_name,omitempty"`
	UserPrompt  string       `json:"user_prompt" dynamodbav:"user_prompt"`
	SQLQuery    string       `json:"sql_query" dynamodbav:"sql_query"`
	Description string       `json:"sql_query_description" dynamodbav:"sql_query_description"`
	Data        string       `json:"data" dynamodbav:"data"`
	Message     string       `json:"message_result" dynamodbav:"message_result"`
}

// Store persists query execution records and serves them back per turn.
type Store interface {
	// Put appends a record. Timestamp and Datetime are filled in when zero.
	Put(ctx context.Context, rec *Record) error

	// ResultsForTurn returns all records for the turn in ascending
	// timestamp order, i.e. the order the queries were executed.
	ResultsForTurn(ctx context.Context, turnID types.TurnID) ([]Record, error)
}

// NewRecord builds a Record from an execution, serializing its raw rows as
// the record's data payload. Timestamp and Datetime are left for Put to fill.
func NewRecord(turnID types.TurnID, exec types.Execution) (*Record, error) {
	data, err := json.Marshal(exec.Rows)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}
	return &Record{
		TurnID:      turnID,
		AgentName:   exec.AgentName,
		UserPrompt:  exec.UserPrompt,
		SQLQuery:    exec.Query,
		Description: exec.Description,
		Data:        string(data),
		Message:     exec.Message,
	}, nil
}

func stampRecord(rec *Record, now time.Time) {
	if rec.Timestamp == 0 {
		rec.Timestamp = now.UnixMilli()
	}
	if rec.Datetime == "" {
		rec.Datetime = now.Format(time.RFC3339)
	}
}
