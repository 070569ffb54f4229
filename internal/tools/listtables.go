package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/hydrolix-assistant/internal/hydrolix"
)

// ListTables reports the tables available in the Hydrolix cluster.
type ListTables struct {
	querier hydrolix.Querier
}

// NewListTables creates the schema inspection tool.
func NewListTables(querier hydrolix.Querier) *ListTables {
	return &ListTables{querier: querier}
}

func (t *ListTables) Name() string { return "list_tables" }
func (t *ListTables) Description() string {
	return "List the tables available in the Hydrolix time-series database with their database names"
}
func (t *ListTables) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *ListTables) Execute(ctx context.Context, _ json.RawMessage) (string, error) {
	rs, err := t.querier.ListTables(ctx)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(rs.Rows)
	if err != nil {
		return "", fmt.Errorf("marshal rows: %w", err)
	}
	return string(out), nil
}
