package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/hydrolix-assistant/pkg/llm"
)

// RunLoop executes the agentic tool loop: call the model, execute any tool
// calls it requests, feed results back, and repeat until the model answers
// with text or maxRounds is exceeded. The orchestrator and every subagent
// share this loop; they differ only in their tools and system prompt.
func RunLoop(ctx context.Context, provider llm.Provider, registry *Registry, messages []llm.Message, maxRounds int) (string, error) {
	for round := 0; round < maxRounds; round++ {
		resp, err := provider.Complete(ctx, messages, registry.AsLLMTools())
		if err != nil {
			return "", fmt.Errorf("LLM call: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:    "assistant",
			Content: resp.Content,
			Tools:   resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			slog.Debug("tool call", "tool", tc.Function.Name, "call_id", tc.ID)

			tool, ok := registry.Get(tc.Function.Name)
			var result string
			if !ok {
				result = fmt.Sprintf("error: unknown tool %q", tc.Function.Name)
			} else {
				var execErr error
				result, execErr = tool.Execute(ctx, tc.Function.Arguments)
				if execErr != nil {
					// Surface the error to the model so it can adjust.
					result = fmt.Sprintf("error: %v", execErr)
				}
			}

			messages = append(messages, llm.Message{
				Role:    "tool",
				Content: result,
				Tools:   []llm.ToolCall{{ID: tc.ID}},
			})
		}
	}

	return "", fmt.Errorf("max tool rounds (%d) exceeded", maxRounds)
}
