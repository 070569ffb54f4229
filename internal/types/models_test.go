// internal/types/models_test.go
package types

import (
	"encoding/json"
	"testing"
)

func TestAnswerSerialization(t *testing.T) {
	answer := Answer{
		TurnID: NewTurnID(),
		Text:   "Cache hit ratio was 94% over the last hour.",
		QueryResults: []QueryResult{
			{
				AgentName:  "cache_origin_agent",
				UserPrompt: "How efficient was the cache in the last hour?",
				Query:      "SELECT countIf(cache_status = 'HIT') / count() FROM cdn.logs",
				Columns:    []string{"hit_ratio"},
				Rows:       []Row{{"hit_ratio": 0.94}},
			},
		},
	}

	data, err := json.Marshal(answer)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Answer
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.TurnID != answer.TurnID {
		t.Errorf("expected turn id %s, got %s", answer.TurnID, decoded.TurnID)
	}
	if len(decoded.QueryResults) != 1 {
		t.Fatalf("expected 1 query result, got %d", len(decoded.QueryResults))
	}
	if decoded.QueryResults[0].Query != answer.QueryResults[0].Query {
		t.Errorf("query text did not round-trip: %q", decoded.QueryResults[0].Query)
	}
}

func TestQueryResultOmitsEmptyRows(t *testing.T) {
	qr := QueryResult{AgentName: "hydrolix_agent", Query: "SELECT 1"}
	data, err := json.Marshal(qr)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["query_results"]; ok {
		t.Error("expected query_results to be omitted when empty")
	}
	if _, ok := m["user_prompt"]; ok {
		t.Error("expected user_prompt to be omitted when empty")
	}
}

func TestTurnContextRoundTrip(t *testing.T) {
	info := &TurnInfo{TurnID: NewTurnID(), UserID: "guest", Timezone: "US/Pacific"}
	ctx := WithTurn(t.Context(), info)

	got, ok := TurnFrom(ctx)
	if !ok {
		t.Fatal("expected turn info in context")
	}
	if got.TurnID != info.TurnID {
		t.Errorf("expected turn id %s, got %s", info.TurnID, got.TurnID)
	}

	if _, ok := TurnFrom(t.Context()); ok {
		t.Error("expected no turn info in fresh context")
	}
}
