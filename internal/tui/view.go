package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/hydrolix-assistant/internal/types"
)

// maxTableRows bounds the rows rendered per query; the full set is always
// in the audit trail.
const maxTableRows = 10

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Hydrolix Assistant"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) helpLine() string {
	if m.focusResults {
		return hintStyle.Render("↑/↓ navigate · enter toggle group · y copy query · tab back to input · ctrl+c quit")
	}
	return hintStyle.Render("enter send · tab focus results · ctrl+c quit")
}

func (m *Model) renderConversation() string {
	var b strings.Builder
	for ti, turn := range m.turns {
		if ti > 0 {
			b.WriteString("\n")
		}
		b.WriteString(promptStyle.Render("> " + turn.prompt))
		b.WriteString("\n")

		if turn.errMsg != "" {
			b.WriteString(errStyle.Render("error: " + turn.errMsg))
			b.WriteString("\n")
			continue
		}
		if turn.answer == nil {
			if m.busy && ti == len(m.turns)-1 {
				b.WriteString(thinkingStyle.Render("thinking..."))
				b.WriteString("\n")
			}
			continue
		}

		b.WriteString(m.renderAnswerText(turn.answer.Text))
		for gi, group := range turn.groups {
			b.WriteString(m.renderGroup(ti, gi, group.AgentName, group.Prompt(), group.Queries))
		}
	}
	return b.String()
}

func (m *Model) renderAnswerText(text string) string {
	if m.markdown != nil {
		if out, err := m.markdown.Render(text); err == nil {
			return out
		}
	}
	return text + "\n"
}

func (m *Model) renderGroup(turn, group int, agentName, groupPrompt string, queries []types.QueryResult) string {
	collapsed := m.disclosure.Collapsed(turn, group)

	arrow := "▾"
	if collapsed {
		arrow = "▸"
	}
	noun := "queries"
	if len(queries) == 1 {
		noun = "query"
	}
	header := fmt.Sprintf("%s %s (%d %s)", arrow, agentName, len(queries), noun)

	style := headerStyle
	if m.isFocused(focusItem{kind: focusHeader, turn: turn, group: group}) {
		style = headerFocusStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(header))
	if groupPrompt != "" {
		// The routed prompt is shown once per group, not per query.
		b.WriteString("  ")
		b.WriteString(groupPromptStyle.Render("“" + groupPrompt + "”"))
	}
	b.WriteString("\n")

	if collapsed {
		return b.String()
	}

	for qi, q := range queries {
		b.WriteString(m.renderQuery(turn, group, qi, q))
	}
	return b.String()
}

func (m *Model) renderQuery(turn, group, query int, q types.QueryResult) string {
	focused := m.isFocused(focusItem{kind: focusQuery, turn: turn, group: group, query: query})

	style := sqlStyle
	if focused {
		style = sqlFocusStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(q.Query))
	if m.copied != nil && *m.copied == (queryKey{turn: turn, group: group, query: query}) {
		b.WriteString("  ")
		b.WriteString(copiedStyle.Render("copied!"))
	} else if focused {
		b.WriteString("  ")
		b.WriteString(hintStyle.Render("y to copy"))
	}
	b.WriteString("\n")

	if q.Description != "" {
		b.WriteString(descStyle.Render(q.Description))
		b.WriteString("\n")
	}
	if len(q.Rows) > 0 {
		b.WriteString(tableStyle.Render(renderTable(q.Columns, q.Rows)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) isFocused(item focusItem) bool {
	if !m.focusResults {
		return false
	}
	items := m.focusItems()
	return m.focusIdx < len(items) && items[m.focusIdx] == item
}

// renderTable lays rows out as a padded text table. Column order follows the
// server-reported order when present, falling back to sorted keys of the
// first row.
func renderTable(columns []string, rows []types.Row) string {
	if len(columns) == 0 && len(rows) > 0 {
		for col := range rows[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}
	if len(columns) == 0 {
		return ""
	}

	shown := rows
	truncated := 0
	if len(shown) > maxTableRows {
		truncated = len(shown) - maxTableRows
		shown = shown[:maxTableRows]
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	cells := make([][]string, len(shown))
	for ri, row := range shown {
		cells[ri] = make([]string, len(columns))
		for ci, col := range columns {
			cell := formatCell(row[col])
			cells[ri][ci] = cell
			if len(cell) > widths[ci] {
				widths[ci] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(tableHeaderStyle.Render(pad(col, widths[i])))
	}
	b.WriteString("\n")
	for _, row := range cells {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(cell, widths[i]))
		}
		b.WriteString("\n")
	}
	if truncated > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("… %d more rows", truncated)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// Trim the ".000000" noise JSON decoding leaves on integers.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
