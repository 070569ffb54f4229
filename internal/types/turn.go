// internal/types/turn.go
package types

import "context"

// TurnInfo carries request-scoped context (turn ID, timezone, user) from the
// orchestrator down into sub-agent tools for the lifetime of one turn.
type TurnInfo struct {
	TurnID    TurnID
	SessionID SessionID
	UserID    string
	Timezone  string
	Prompt    string
	Recorder  QueryRecorder
}

type turnInfoKey struct{}

// WithTurn returns a context carrying the given turn info.
func WithTurn(ctx context.Context, info *TurnInfo) context.Context {
	return context.WithValue(ctx, turnInfoKey{}, info)
}

// TurnFrom extracts the turn info from the context, if present.
func TurnFrom(ctx context.Context) (*TurnInfo, bool) {
	info, ok := ctx.Value(turnInfoKey{}).(*TurnInfo)
	return info, ok
}
