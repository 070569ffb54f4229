// Package tools implements the executable tools exposed to the analyst
// agents: SQL execution and schema inspection against Hydrolix, current
// time lookup, and web page reading.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/user/hydrolix-assistant/internal/hydrolix"
	"github.com/user/hydrolix-assistant/internal/types"
)

const maxResultChars = 20000

// RunSelectQuery executes read-only ClickHouse-dialect SQL against Hydrolix
// and records every execution on the turn's recorder so the raw rows end up
// in the audit trail and in the final answer.
type RunSelectQuery struct {
	querier    hydrolix.Querier
	agentName  string
	userPrompt string
}

// NewRunSelectQuery creates the tool for one subagent invocation. agentName
// and userPrompt are stamped onto every recorded execution.
func NewRunSelectQuery(querier hydrolix.Querier, agentName, userPrompt string) *RunSelectQuery {
	return &RunSelectQuery{querier: querier, agentName: agentName, userPrompt: userPrompt}
}

func (t *RunSelectQuery) Name() string { return "run_select_query" }
func (t *RunSelectQuery) Description() string {
	return "Execute a read-only SQL query (ClickHouse dialect) against the Hydrolix time-series database and return the result rows as JSON"
}
func (t *RunSelectQuery) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"sql": {"type": "string", "description": "The SELECT statement to execute"},
			"description": {"type": "string", "description": "One sentence describing what the query measures"}
		},
		"required": ["sql"]
	}`)
}

func (t *RunSelectQuery) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		SQL         string `json:"sql"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	if params.SQL == "" {
		return "", fmt.Errorf("sql is required")
	}

	rs, err := t.querier.Query(ctx, params.SQL)
	if err != nil {
		return "", err
	}

	rows := make([]types.Row, len(rs.Rows))
	for i, row := range rs.Rows {
		rows[i] = types.Row(row)
	}

	exec := types.Execution{
		AgentName:   t.agentName,
		UserPrompt:  t.userPrompt,
		Query:       params.SQL,
		Description: params.Description,
		Columns:     rs.Columns,
		Rows:        rows,
	}
	if info, ok := types.TurnFrom(ctx); ok && info.Recorder != nil {
		if err := info.Recorder.Record(ctx, exec); err != nil {
			// The query itself succeeded; keep going with a degraded trail.
			slog.Warn("record query execution", "agent", t.agentName, "error", err)
		}
	}

	out, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("marshal rows: %w", err)
	}
	result := string(out)
	if len(result) > maxResultChars {
		result = result[:maxResultChars] + "\n[truncated]"
	}
	return result, nil
}
