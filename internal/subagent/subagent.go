// Package subagent implements the specialized analyst agents the
// orchestrator routes questions to. Each subagent is itself an orchestrator
// tool: executing it runs an inner agent loop with the analyst's system
// prompt and the Hydrolix query tools.
package subagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/user/hydrolix-assistant/internal/hydrolix"
	"github.com/user/hydrolix-assistant/internal/orchestrator"
	"github.com/user/hydrolix-assistant/internal/prompt"
	"github.com/user/hydrolix-assistant/internal/tools"
	"github.com/user/hydrolix-assistant/internal/types"
	"github.com/user/hydrolix-assistant/pkg/llm"
)

// DefaultMaxRounds bounds each subagent's inner tool loop.
const DefaultMaxRounds = 10

// Subagent runs an inner analyst agent as an orchestrator tool.
type Subagent struct {
	name        string
	description string
	sysTemplate string
	queryPrefix string
	provider    llm.Provider
	engine      *prompt.Engine
	querier     hydrolix.Querier
	maxRounds   int
}

// Options configures a Subagent.
type Options struct {
	Provider  llm.Provider
	Engine    *prompt.Engine
	Querier   hydrolix.Querier
	MaxRounds int
}

func newSubagent(name, description, sysTemplate, queryPrefix string, opts Options) *Subagent {
	if opts.MaxRounds == 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Subagent{
		name:        name,
		description: description,
		sysTemplate: sysTemplate,
		queryPrefix: queryPrefix,
		provider:    opts.Provider,
		engine:      opts.Engine,
		querier:     opts.Querier,
		maxRounds:   opts.MaxRounds,
	}
}

// NewHydrolix creates the general time-series analyst subagent.
func NewHydrolix(opts Options) *Subagent {
	return newSubagent(
		"hydrolix_agent",
		"Analyze Hydrolix time-series data: streaming video analytics, CDN performance, CMCD metrics, buffer diagnostics, and regional or edge comparisons",
		prompt.HydrolixPrompt,
		"Analyze time-series data for this user question: ",
		opts,
	)
}

// NewQoE creates the Quality of Experience analyst subagent.
func NewQoE(opts Options) *Subagent {
	return newSubagent(
		"qoe_analysis_agent",
		"Analyze streaming video Quality of Experience: buffer health and starvation, bitrate adaptation and throughput, session-level quality, startup performance, and geographic QoE breakdowns",
		prompt.QoEPrompt,
		"Analyze Quality of Experience for: ",
		opts,
	)
}

// NewCacheOrigin creates the cache and origin performance analyst subagent.
func NewCacheOrigin(opts Options) *Subagent {
	return newSubagent(
		"cache_origin_agent",
		"Analyze CDN cache efficiency and origin server performance: hit ratios, origin offload, origin response times and error rates, and hot content",
		prompt.CacheOriginPrompt,
		"Analyze cache and origin performance for: ",
		opts,
	)
}

func (s *Subagent) Name() string        { return s.name }
func (s *Subagent) Description() string { return s.description }
func (s *Subagent) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The user question to analyze"}
		},
		"required": ["query"]
	}`)
}

// Execute runs the inner agent loop for one routed question. The subagent's
// query tools record every execution on the turn recorder carried in ctx.
func (s *Subagent) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	if params.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	timezone := ""
	if info, ok := types.TurnFrom(ctx); ok {
		timezone = info.Timezone
	}

	registry := orchestrator.NewRegistry()
	registry.Register(tools.NewRunSelectQuery(s.querier, s.name, params.Query))
	registry.Register(tools.NewListTables(s.querier))
	registry.Register(tools.NewCurrentTime(timezone))

	slog.Info("subagent started", "agent", s.name, "query", params.Query)

	messages, err := s.engine.BuildPrompt(s.sysTemplate, nil, registry.Names(), s.queryPrefix+params.Query)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	text, err := orchestrator.RunLoop(ctx, s.provider, registry, messages, s.maxRounds)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.name, err)
	}
	if text == "" {
		return "The analysis completed but produced no summary.", nil
	}
	return text, nil
}

var _ orchestrator.Tool = (*Subagent)(nil)
