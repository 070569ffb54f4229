// Package prompt assembles token-budgeted message lists for the LLM from a
// system prompt template and recent conversation turns.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/hydrolix-assistant/internal/types"
	"github.com/user/hydrolix-assistant/pkg/llm"
)

// Data holds the substitution values for a system prompt template.
type Data struct {
	Time     string
	Timezone string
	Table    string
	Tools    string
}

// Render executes a system prompt template with the given values.
func Render(tmpl string, data Data) (string, error) {
	t, err := template.New("system").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}
	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return buf.String(), nil
}

// Engine assembles token-budgeted prompts for the LLM.
type Engine struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
	reserve   int
	timezone  string
	table     string
	now       func() time.Time
}

// New creates a prompt engine with the specified token budget.
// model selects the tokenizer; maxTokens is the model's context window and
// reserve is held back for the model's response. timezone and table are
// substituted into system prompt templates.
func New(model string, maxTokens, reserve int, timezone, table string) (*Engine, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Engine{
		tokenizer: enc,
		maxTokens: maxTokens,
		reserve:   reserve,
		timezone:  timezone,
		table:     table,
		now:       time.Now,
	}, nil
}

func (e *Engine) countTokens(text string) int {
	return len(e.tokenizer.Encode(text, nil, nil))
}

// BuildPrompt assembles a token-budgeted message list: the rendered system
// prompt, then as many of the most recent turns as fit the budget, oldest
// first, then the current user prompt.
func (e *Engine) BuildPrompt(sysTemplate string, turns []types.Turn, toolNames []string, userPrompt string) ([]llm.Message, error) {
	sysPrompt, err := Render(sysTemplate, Data{
		Time:     e.now().Format(time.RFC3339),
		Timezone: e.timezone,
		Table:    e.table,
		Tools:    strings.Join(toolNames, ", "),
	})
	if err != nil {
		return nil, err
	}

	inputBudget := e.maxTokens - e.reserve
	remaining := inputBudget - e.countTokens(sysPrompt) - e.countTokens(userPrompt)

	// 80% of what's left goes to history; the rest is safety margin for
	// message framing overhead the tokenizer doesn't see.
	historyBudget := int(float64(remaining) * 0.8)

	// Walk history newest-first so the most recent turns survive truncation.
	var kept []llm.Message
	usedTokens := 0
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		msgTokens := e.countTokens(turn.Text)
		if usedTokens+msgTokens > historyBudget {
			break
		}
		kept = append(kept, llm.Message{Role: turn.Role, Content: turn.Text})
		usedTokens += msgTokens
	}

	messages := make([]llm.Message, 0, len(kept)+2)
	messages = append(messages, llm.Message{Role: "system", Content: sysPrompt})
	for i := len(kept) - 1; i >= 0; i-- {
		messages = append(messages, kept[i])
	}
	messages = append(messages, llm.Message{Role: "user", Content: userPrompt})
	return messages, nil
}
