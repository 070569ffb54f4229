// Package results groups the per-query execution records of an answer for
// display: maximal contiguous runs sharing an agent name become one group,
// preserving the order in which sub-agents contributed to the answer.
package results

import "github.com/user/hydrolix-assistant/internal/types"

// UnknownAgent is substituted when an execution record carries no agent name.
const UnknownAgent = "unknown"

// AgentGroup is a contiguous run of query results produced by one agent.
type AgentGroup struct {
	AgentName string
	Queries   []types.QueryResult
}

// Prompt returns the originating natural-language prompt for the group:
// the first query in the group that carries one. Empty when none does.
func (g AgentGroup) Prompt() string {
	for _, q := range g.Queries {
		if q.UserPrompt != "" {
			return q.UserPrompt
		}
	}
	return ""
}

// Group partitions queryResults into maximal contiguous runs sharing an
// agent name. Runs of the same agent separated by a different agent are NOT
// merged; that would lose the conversational timeline. The function is pure:
// concatenating the Queries of all returned groups, in order, reproduces the
// input exactly.
func Group(queryResults []types.QueryResult) []AgentGroup {
	if len(queryResults) == 0 {
		return nil
	}

	var groups []AgentGroup
	for _, qr := range queryResults {
		name := qr.AgentName
		if name == "" {
			name = UnknownAgent
		}
		if len(groups) == 0 || groups[len(groups)-1].AgentName != name {
			groups = append(groups, AgentGroup{AgentName: name})
		}
		last := &groups[len(groups)-1]
		last.Queries = append(last.Queries, qr)
	}
	return groups
}
