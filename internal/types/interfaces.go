// internal/types/interfaces.go
package types

import (
	"context"
)

type SessionStore interface {
	ResolveOrCreate(ctx context.Context, key SessionKey, userID string) (SessionID, error)
	Get(ctx context.Context, id SessionID) (*SessionIndex, error)
	List(ctx context.Context) ([]*SessionIndex, error)
	Update(ctx context.Context, session *SessionIndex) error
}

// MemoryStore is the conversational memory service: it persists turns per
// (actor, session) and serves back a bounded recent window.
type MemoryStore interface {
	SaveTurn(ctx context.Context, actorID string, sessionID SessionID, turn Turn) error
	Recent(ctx context.Context, actorID string, sessionID SessionID, lastK int) ([]Turn, error)
}

// QueryRecorder receives each sub-agent query execution as it happens. The
// orchestrator's per-turn recorder persists the raw result to the audit
// store and keeps the execution order for answer assembly.
type QueryRecorder interface {
	Record(ctx context.Context, exec Execution) error
}
