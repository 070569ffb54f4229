// Package orchestrator runs the top-level agent for a conversation turn. The
// orchestrator routes the user's question to specialized analyst subagents
// (registered as tools), then assembles the final answer from the loop's
// text and the query executions the subagents recorded along the way.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/hydrolix-assistant/internal/answer"
	"github.com/user/hydrolix-assistant/internal/auditstore"
	"github.com/user/hydrolix-assistant/internal/prompt"
	"github.com/user/hydrolix-assistant/internal/types"
	"github.com/user/hydrolix-assistant/pkg/llm"
)

// DefaultMaxRounds bounds the orchestrator's tool loop.
const DefaultMaxRounds = 10

// Orchestrator handles one conversation turn end to end.
type Orchestrator struct {
	provider  llm.Provider
	engine    *prompt.Engine
	registry  *Registry
	memory    types.MemoryStore
	audits    auditstore.Store
	timezone  string
	lastK     int
	maxRounds int
}

// Options configures an Orchestrator.
type Options struct {
	Provider llm.Provider
	Engine   *prompt.Engine
	Registry *Registry
	Memory   types.MemoryStore
	Audits   auditstore.Store

	// Timezone is the default user timezone when the event carries none.
	Timezone string
	// LastK is how many recent memory turns to include in the prompt.
	LastK int
	// MaxRounds bounds the tool loop; zero means DefaultMaxRounds.
	MaxRounds int
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.MaxRounds == 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Orchestrator{
		provider:  opts.Provider,
		engine:    opts.Engine,
		registry:  opts.Registry,
		memory:    opts.Memory,
		audits:    opts.Audits,
		timezone:  opts.Timezone,
		lastK:     opts.LastK,
		maxRounds: opts.MaxRounds,
	}
}

// HandleTurn processes one inbound user prompt and returns the assembled
// answer: the orchestrator's text plus every query executed on the way,
// paired with its persisted raw result batch.
func (o *Orchestrator) HandleTurn(ctx context.Context, ev types.InboundEvent) (*types.Answer, error) {
	turnID := ev.TurnID
	if turnID == "" {
		turnID = types.NewTurnID()
	}
	sessionID := types.SessionID(ev.SessionKey)
	timezone := ev.Timezone
	if timezone == "" {
		timezone = o.timezone
	}

	recorder := NewRecorder(turnID, o.audits)
	ctx = types.WithTurn(ctx, &types.TurnInfo{
		TurnID:    turnID,
		SessionID: sessionID,
		UserID:    ev.UserID,
		Timezone:  timezone,
		Prompt:    ev.Text,
		Recorder:  recorder,
	})

	start := time.Now()
	slog.Info("turn started", "turn_id", string(turnID), "session", string(sessionID), "source", ev.Source)

	lastK := o.lastK
	if ev.LastK > 0 {
		lastK = ev.LastK
	}
	history, err := o.memory.Recent(ctx, ev.UserID, sessionID, lastK)
	if err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}

	messages, err := o.engine.BuildPrompt(prompt.OrchestratorPrompt, history, o.registry.Names(), ev.Text)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	text, err := RunLoop(ctx, o.provider, o.registry, messages, o.maxRounds)
	if err != nil {
		return nil, fmt.Errorf("orchestrator loop: %w", err)
	}

	if err := o.memory.SaveTurn(ctx, ev.UserID, sessionID, types.Turn{Role: "user", Text: ev.Text}); err != nil {
		slog.Warn("save user turn", "error", err)
	}
	if err := o.memory.SaveTurn(ctx, ev.UserID, sessionID, types.Turn{Role: "assistant", Text: text}); err != nil {
		slog.Warn("save assistant turn", "error", err)
	}

	batches, err := o.audits.ResultsForTurn(ctx, turnID)
	if err != nil {
		// The answer text is still valid without its raw batches.
		slog.Warn("load result batches", "turn_id", string(turnID), "error", err)
		batches = nil
	}

	ans := answer.Assemble(turnID, text, recorder.Executions(), batches)
	slog.Info("turn finished",
		"turn_id", string(turnID),
		"queries", len(ans.QueryResults),
		"duration", time.Since(start),
	)
	return ans, nil
}
