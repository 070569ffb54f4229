package gateway

import (
	"context"
	"time"

	"github.com/user/hydrolix-assistant/internal/types"
)

// RunStatus represents the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run tracks a single execution of an inbound event against a session.
type Run struct {
	ID         types.RunID
	SessionID  types.SessionID
	TurnID     types.TurnID
	Event      *types.InboundEvent
	Status     RunStatus
	Attempts   int
	CreatedAt  time.Time
	StartedAt  *time.Time
	EndedAt    *time.Time
	Error      error
	Ctx        context.Context
	OnComplete func(answer *types.Answer)
}

// NewRun creates a Run in the Queued state for the given session and event.
// The turn ID comes from the event when the caller supplied one, so external
// callers can correlate the answer with their own request ID.
func NewRun(sessionID types.SessionID, event *types.InboundEvent) *Run {
	turnID := event.TurnID
	if turnID == "" {
		turnID = types.NewTurnID()
	}
	return &Run{
		ID:        types.NewRunID(),
		SessionID: sessionID,
		TurnID:    turnID,
		Event:     event,
		Status:    RunStatusQueued,
		Attempts:  0,
		CreatedAt: time.Now(),
	}
}
