// Package answer builds the final Answer for a turn by merging the
// orchestrator's in-order execution records with the raw result batches
// persisted for that turn.
//
// The matching discipline is turn ID plus chronological order: for a given
// turn, the execution records and the persisted batches are paired 1:1, in
// order. Callers must fetch batches with auditstore.ResultsForTurn, which
// returns them in ascending timestamp order.
package answer

import (
	"encoding/json"
	"log/slog"

	"github.com/user/hydrolix-assistant/internal/auditstore"
	"github.com/user/hydrolix-assistant/internal/types"
)

// Assemble produces the Answer for a turn. Raw rows are taken from the
// persisted batches; agent, prompt, and query text come from the execution
// records. The originating prompt is kept only on the first execution of
// each contiguous agent run, so renderers show it once per group.
func Assemble(turnID types.TurnID, text string, execs []types.Execution, batches []auditstore.Record) *types.Answer {
	if len(execs) != len(batches) {
		slog.Warn("execution/batch count mismatch",
			"turn_id", string(turnID),
			"executions", len(execs),
			"batches", len(batches),
		)
	}

	queryResults := make([]types.QueryResult, 0, len(execs))
	prevAgent := ""
	for i, exec := range execs {
		qr := types.QueryResult{
			AgentName:   exec.AgentName,
			Query:       exec.Query,
			Description: exec.Description,
			Columns:     exec.Columns,
			Rows:        exec.Rows,
		}
		if exec.AgentName != prevAgent {
			qr.UserPrompt = exec.UserPrompt
		}
		prevAgent = exec.AgentName

		// Prefer the persisted batch for raw rows: it is the audit-trail
		// source of truth, and execution records may have been trimmed.
		if i < len(batches) {
			if rows, ok := decodeRows(batches[i].Data); ok {
				qr.Rows = rows
			}
		}
		queryResults = append(queryResults, qr)
	}

	return &types.Answer{
		TurnID:       turnID,
		Text:         text,
		QueryResults: queryResults,
	}
}

func decodeRows(data string) ([]types.Row, bool) {
	if data == "" {
		return nil, false
	}
	var rows []types.Row
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, false
	}
	return rows, true
}
