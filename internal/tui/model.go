// Package tui is the interactive chat interface. It renders each answer's
// query results as per-agent panels with collapse/expand disclosure and
// clipboard copy for individual queries.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/user/hydrolix-assistant/internal/results"
	"github.com/user/hydrolix-assistant/internal/types"
)

// Submit runs one prompt through the assistant and returns its answer.
// It is called off the UI goroutine.
type Submit func(prompt string) (*types.Answer, error)

// turnView is one exchange as displayed: the user's prompt plus, once the
// answer arrives, its grouped query results.
type turnView struct {
	prompt string
	answer *types.Answer
	groups []results.AgentGroup
	errMsg string
}

// answerMsg delivers the assistant's answer (or failure) for the pending turn.
type answerMsg struct {
	answer *types.Answer
	err    error
}

// Model is the bubbletea model for the chat interface.
type Model struct {
	submit Submit

	viewport viewport.Model
	input    textarea.Model
	markdown *glamour.TermRenderer

	turns      []turnView
	disclosure *results.Disclosure

	// focusResults switches key handling between the input box and the
	// results area.
	focusResults bool
	focusIdx     int

	// copySeq invalidates pending fade ticks: a fade only clears the
	// indicator if no newer copy happened since it was scheduled.
	copySeq int
	copied  *queryKey

	busy   bool
	width  int
	height int
	ready  bool
}

// New creates the chat model.
func New(submit Submit) *Model {
	input := textarea.New()
	input.Placeholder = "Ask about your streaming data..."
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	return &Model{
		submit:     submit,
		input:      input,
		disclosure: results.NewDisclosure(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - m.input.Height() - 4
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.input.SetWidth(msg.Width - 2)
		m.markdown = newMarkdownRenderer(msg.Width)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		m.busy = false
		last := len(m.turns) - 1
		if last < 0 {
			return m, nil
		}
		if msg.err != nil {
			m.turns[last].errMsg = msg.err.Error()
			m.refresh()
			return m, nil
		}
		m.turns[last].answer = msg.answer
		m.turns[last].groups = results.Group(msg.answer.QueryResults)
		m.disclosure.ResetTurn(last, len(m.turns[last].groups))
		m.clampFocus()
		m.refresh()
		return m, nil

	case copyFadeMsg:
		// Stale fades (an older copy's timer) are ignored so a re-copy
		// restarts the full indicator window.
		if msg.seq == m.copySeq {
			m.copied = nil
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.focusResults = !m.focusResults
		if m.focusResults {
			m.input.Blur()
			m.clampFocus()
		} else {
			m.input.Focus()
		}
		m.refresh()
		return m, nil
	}

	if m.focusResults {
		return m.handleResultsKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" || m.busy {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		m.turns = append(m.turns, turnView{prompt: prompt})
		m.refresh()
		submit := m.submit
		return m, func() tea.Msg {
			ans, err := submit(prompt)
			return answerMsg{answer: ans, err: err}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.focusItems()

	switch msg.String() {
	case "up", "k":
		if m.focusIdx > 0 {
			m.focusIdx--
		}
		m.refresh()
		return m, nil

	case "down", "j":
		if m.focusIdx < len(items)-1 {
			m.focusIdx++
		}
		m.refresh()
		return m, nil

	case "enter", " ":
		// One key press flips exactly one group, whether the focus sits
		// on the header or on a query inside it.
		if m.focusIdx < len(items) {
			item := items[m.focusIdx]
			m.disclosure.Toggle(item.turn, item.group)
			m.clampFocus()
			m.refresh()
		}
		return m, nil

	case "y":
		if m.focusIdx < len(items) {
			item := items[m.focusIdx]
			if item.kind == focusQuery {
				query := m.turns[item.turn].groups[item.group].Queries[item.query].Query
				m.copySeq++
				m.copied = &queryKey{turn: item.turn, group: item.group, query: item.query}
				m.refresh()
				return m, copyToClipboard(query, m.copySeq)
			}
		}
		return m, nil

	case "pgup":
		m.viewport.ViewUp()
		return m, nil

	case "pgdown":
		m.viewport.ViewDown()
		return m, nil
	}

	return m, nil
}

// refresh rebuilds the viewport content from the conversation state.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return nil
	}
	return r
}
