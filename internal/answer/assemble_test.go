// internal/answer/assemble_test.go
package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/hydrolix-assistant/internal/auditstore"
	"github.com/user/hydrolix-assistant/internal/types"
)

func TestAssemblePairsInOrder(t *testing.T) {
	turn := types.NewTurnID()
	execs := []types.Execution{
		{AgentName: "qoe_analysis_agent", UserPrompt: "how bad was rebuffering", Query: "SELECT 1"},
		{AgentName: "qoe_analysis_agent", UserPrompt: "how bad was rebuffering", Query: "SELECT 2"},
	}
	batches := []auditstore.Record{
		{TurnID: turn, SQLQuery: "SELECT 1", Data: `[{"rebuffer_ratio":0.02}]`, Timestamp: 1},
		{TurnID: turn, SQLQuery: "SELECT 2", Data: `[{"sessions":120}]`, Timestamp: 2},
	}

	ans := Assemble(turn, "Rebuffering was low.", execs, batches)

	require.Len(t, ans.QueryResults, 2)
	assert.Equal(t, "SELECT 1", ans.QueryResults[0].Query)
	assert.Equal(t, []types.Row{{"rebuffer_ratio": 0.02}}, ans.QueryResults[0].Rows)
	assert.Equal(t, []types.Row{{"sessions": float64(120)}}, ans.QueryResults[1].Rows)
	assert.Equal(t, "Rebuffering was low.", ans.Text)
	assert.Equal(t, turn, ans.TurnID)
}

func TestAssemblePromptOncePerAgentRun(t *testing.T) {
	turn := types.NewTurnID()
	execs := []types.Execution{
		{AgentName: "a", UserPrompt: "first question", Query: "q1"},
		{AgentName: "a", UserPrompt: "first question", Query: "q2"},
		{AgentName: "b", UserPrompt: "second question", Query: "q3"},
		{AgentName: "a", UserPrompt: "third question", Query: "q4"},
	}

	ans := Assemble(turn, "done", execs, nil)

	require.Len(t, ans.QueryResults, 4)
	assert.Equal(t, "first question", ans.QueryResults[0].UserPrompt)
	assert.Empty(t, ans.QueryResults[1].UserPrompt, "repeat within a run is dropped")
	assert.Equal(t, "second question", ans.QueryResults[2].UserPrompt)
	assert.Equal(t, "third question", ans.QueryResults[3].UserPrompt, "new run of same agent keeps its prompt")
}

func TestAssembleMissingBatchKeepsExecutionRows(t *testing.T) {
	turn := types.NewTurnID()
	execs := []types.Execution{
		{AgentName: "a", Query: "q1", Rows: []types.Row{{"n": 1}}},
		{AgentName: "a", Query: "q2", Rows: []types.Row{{"n": 2}}},
	}
	batches := []auditstore.Record{
		{TurnID: turn, Data: `[{"n":10}]`, Timestamp: 1},
	}

	ans := Assemble(turn, "done", execs, batches)

	require.Len(t, ans.QueryResults, 2)
	assert.Equal(t, []types.Row{{"n": float64(10)}}, ans.QueryResults[0].Rows, "batch rows win when present")
	assert.Equal(t, []types.Row{{"n": 1}}, ans.QueryResults[1].Rows, "execution rows kept when no batch")
}

func TestAssembleEmpty(t *testing.T) {
	ans := Assemble(types.NewTurnID(), "just a chat, no queries", nil, nil)
	assert.Empty(t, ans.QueryResults)
	assert.Equal(t, "just a chat, no queries", ans.Text)
}

func TestAssembleMalformedBatchData(t *testing.T) {
	turn := types.NewTurnID()
	execs := []types.Execution{{AgentName: "a", Query: "q1", Rows: []types.Row{{"n": 1}}}}
	batches := []auditstore.Record{{TurnID: turn, Data: "not json", Timestamp: 1}}

	ans := Assemble(turn, "done", execs, batches)

	require.Len(t, ans.QueryResults, 1)
	assert.Equal(t, []types.Row{{"n": 1}}, ans.QueryResults[0].Rows)
}
