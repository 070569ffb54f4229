// internal/types/models.go
package types

import (
	"encoding/json"
	"time"
)

// Row is one result row, mapping column name to value. Column order is not
// carried by the map itself; QueryResult.Columns preserves it.
type Row map[string]any

// QueryResult is one executed query plus its originating prompt, agent, and
// raw row data. Ordering within an answer is significant: entries appear in
// the sequence the orchestrator executed them.
type QueryResult struct {
	AgentName   string   `json:"agent_name"`
	UserPrompt  string   `json:"user_prompt,omitempty"`
	Query       string   `json:"query"`
	Description string   `json:"description,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Rows        []Row    `json:"query_results,omitempty"`
}

// Answer is one assistant turn: the final text plus the per-query execution
// records merged with their persisted raw rows.
type Answer struct {
	TurnID       TurnID        `json:"turn_id"`
	Text         string        `json:"answer"`
	QueryResults []QueryResult `json:"query_results,omitempty"`
}

// Execution records one sub-agent query execution during a turn, before raw
// rows are re-attached from the audit store. UserPrompt carries the question
// the orchestrator handed to the sub-agent.
type Execution struct {
	AgentName   string
	UserPrompt  string
	Query       string
	Description string
	Columns     []string
	Rows        []Row
	Message     string
}

// Turn is one stored conversational message (user or assistant) in the
// memory service.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type SessionIndex struct {
	SessionID  SessionID  `json:"session_id"`
	SessionKey SessionKey `json:"session_key"`
	UserID     string     `json:"user_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastRunID  RunID      `json:"last_run_id,omitempty"`
	LastTurnID TurnID     `json:"last_turn_id,omitempty"`
}

type InboundEvent struct {
	Source     string          `json:"source"`
	SessionKey SessionKey      `json:"session_key"`
	UserID     string          `json:"user_id"`
	Text       string          `json:"text"`
	Timezone   string          `json:"user_timezone,omitempty"`
	TurnID     TurnID          `json:"prompt_uuid,omitempty"`
	LastK      int             `json:"last_k_turns,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}
