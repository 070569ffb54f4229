package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/hydrolix-assistant/internal/types"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyY     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}
)

func testAnswer() *types.Answer {
	return &types.Answer{
		TurnID: "turn-1",
		Text:   "Here is the breakdown.",
		QueryResults: []types.QueryResult{
			{
				AgentName:  "hydrolix_agent",
				UserPrompt: "error counts over the last hour",
				Query:      "SELECT count() AS errors FROM playback",
				Columns:    []string{"errors"},
				Rows:       []types.Row{{"errors": float64(42)}},
			},
			{
				AgentName: "hydrolix_agent",
				Query:     "SELECT avg(bitrate) AS avg_bitrate FROM playback",
			},
			{
				AgentName:  "qoe_analysis_agent",
				UserPrompt: "rebuffering impact",
				Query:      "SELECT rebuffer_ratio FROM playback",
			},
		},
	}
}

// readyModel builds a model, sizes it, and plays one full prompt/answer
// exchange through Update.
func readyModel(t *testing.T, answer *types.Answer, err error) *Model {
	t.Helper()

	m := New(func(string) (*types.Answer, error) { return answer, err })
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m.input.SetValue("what happened in the last hour?")
	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd, "enter on a non-empty input submits")
	require.True(t, m.busy)

	m.Update(cmd())
	require.False(t, m.busy)
	return m
}

func TestAnswerGroupsWithFirstExpanded(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	require.Len(t, m.turns, 1)
	require.Len(t, m.turns[0].groups, 2)

	view := m.View()
	assert.Contains(t, view, "hydrolix_agent (2 queries)")
	assert.Contains(t, view, "qoe_analysis_agent (1 query)")
	assert.Contains(t, view, "SELECT count() AS errors FROM playback",
		"first group starts expanded")
	assert.NotContains(t, view, "SELECT rebuffer_ratio FROM playback",
		"second group starts collapsed")
}

func TestGroupPromptShownOnce(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	view := m.View()
	assert.Equal(t, 1, strings.Count(view, "error counts over the last hour"),
		"routed prompt appears once in the group header, not per query")
}

func TestToggleFlipsOneGroup(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	// Focus results, move to the second group header, expand it.
	m.Update(keyTab)
	require.True(t, m.focusResults)
	m.Update(keyDown) // first query
	m.Update(keyDown) // second query
	m.Update(keyDown) // qoe header
	m.Update(keyEnter)

	view := m.View()
	assert.Contains(t, view, "SELECT rebuffer_ratio FROM playback")
	assert.Contains(t, view, "SELECT count() AS errors FROM playback",
		"first group untouched")

	m.Update(keyEnter)
	view = m.View()
	assert.NotContains(t, view, "SELECT rebuffer_ratio FROM playback",
		"second toggle collapses again")
}

func TestToggleFromQueryRowCollapsesItsGroup(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	m.Update(keyTab)
	m.Update(keyDown) // first query of group 0
	m.Update(keyEnter)

	view := m.View()
	assert.NotContains(t, view, "SELECT count() AS errors FROM playback",
		"toggling from inside a group collapses that group")
	assert.Contains(t, view, "hydrolix_agent (2 queries)", "header stays visible")
}

func TestCopyIndicatorAndFade(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	m.Update(keyTab)
	m.Update(keyDown) // first query
	_, cmd := m.Update(keyY)
	require.NotNil(t, cmd)
	require.NotNil(t, m.copied)
	assert.Contains(t, m.View(), "copied!")

	m.Update(copyFadeMsg{seq: m.copySeq})
	assert.Nil(t, m.copied)
	assert.NotContains(t, m.View(), "copied!")
}

func TestRecopyRestartsFade(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	m.Update(keyTab)
	m.Update(keyDown)
	m.Update(keyY)
	firstSeq := m.copySeq

	m.Update(keyY) // copy again before the first fade fires

	m.Update(copyFadeMsg{seq: firstSeq})
	assert.NotNil(t, m.copied, "stale fade from the first copy is ignored")

	m.Update(copyFadeMsg{seq: m.copySeq})
	assert.Nil(t, m.copied, "the newest copy's fade clears the indicator")
}

func TestCopyIgnoredOnHeader(t *testing.T) {
	m := readyModel(t, testAnswer(), nil)

	m.Update(keyTab) // focus lands on the first header
	_, cmd := m.Update(keyY)
	assert.Nil(t, cmd)
	assert.Nil(t, m.copied)
}

func TestSubmitErrorShownInline(t *testing.T) {
	m := readyModel(t, nil, assert.AnError)

	view := m.View()
	assert.Contains(t, view, "error:")
	assert.Contains(t, view, "what happened in the last hour?",
		"the prompt stays in the transcript")
}

func TestEmptyInputDoesNotSubmit(t *testing.T) {
	m := New(func(string) (*types.Answer, error) { return testAnswer(), nil })
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.input.SetValue("   ")
	_, cmd := m.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.Empty(t, m.turns)
	assert.False(t, m.busy)
}

func TestRenderTableColumnOrder(t *testing.T) {
	rows := []types.Row{{"zeta": "z1", "alpha": "a1"}}

	out := renderTable([]string{"zeta", "alpha"}, rows)
	assert.Less(t, strings.Index(out, "zeta"), strings.Index(out, "alpha"),
		"reported column order wins")

	out = renderTable(nil, rows)
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "zeta"),
		"fallback is sorted keys")
}

func TestRenderTableTruncatesRows(t *testing.T) {
	rows := make([]types.Row, maxTableRows+7)
	for i := range rows {
		rows[i] = types.Row{"n": float64(i)}
	}

	out := renderTable([]string{"n"}, rows)
	assert.Contains(t, out, "7 more rows")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "42", formatCell(float64(42)))
	assert.Equal(t, "0.25", formatCell(0.25))
	assert.Equal(t, "edge-9", formatCell("edge-9"))
	assert.Equal(t, "", formatCell(nil))
}
