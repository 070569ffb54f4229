package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/hydrolix-assistant/internal/auditstore"
	"github.com/user/hydrolix-assistant/internal/types"
)

// Recorder captures every query execution made during one turn, in the order
// the tools performed them, and persists each raw result batch to the audit
// store under the turn's ID.
type Recorder struct {
	turnID types.TurnID
	store  auditstore.Store

	mu    sync.Mutex
	execs []types.Execution
}

// NewRecorder creates a recorder for one turn.
func NewRecorder(turnID types.TurnID, store auditstore.Store) *Recorder {
	return &Recorder{turnID: turnID, store: store}
}

// Record persists the execution's raw rows and appends it to the in-order
// execution list for the turn.
func (r *Recorder) Record(ctx context.Context, exec types.Execution) error {
	rec, err := auditstore.NewRecord(r.turnID, exec)
	if err != nil {
		return fmt.Errorf("build audit record: %w", err)
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("persist audit record: %w", err)
	}

	r.mu.Lock()
	r.execs = append(r.execs, exec)
	r.mu.Unlock()
	return nil
}

// Executions returns the recorded executions in execution order.
func (r *Recorder) Executions() []types.Execution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Execution, len(r.execs))
	copy(out, r.execs)
	return out
}

var _ types.QueryRecorder = (*Recorder)(nil)
