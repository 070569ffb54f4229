// Package bedrock implements the llm.Provider interface on top of the
// Amazon Bedrock Converse API.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/user/hydrolix-assistant/pkg/llm"
)

// converseAPI is the subset of the Bedrock runtime client we use.
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client implements llm.Provider using the Bedrock Converse API.
type Client struct {
	api    converseAPI
	config *llm.Config
}

// New creates a Bedrock provider. The runtime client is injected so callers
// control AWS configuration and tests can substitute a fake.
func New(api converseAPI, config *llm.Config) *Client {
	return &Client{api: api, config: config}
}

// Complete sends a Converse request and returns the full response.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.config.Model),
	}

	if c.config.MaxTokens > 0 || c.config.Temperature != 0 {
		inference := &brtypes.InferenceConfiguration{}
		if c.config.MaxTokens > 0 {
			inference.MaxTokens = aws.Int32(int32(c.config.MaxTokens))
		}
		if c.config.Temperature != 0 {
			inference.Temperature = aws.Float32(c.config.Temperature)
		}
		input.InferenceConfig = inference
	}

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			input.System = append(input.System, &brtypes.SystemContentBlockMemberText{Value: msg.Content})
		case "tool":
			input.Messages = append(input.Messages, toolResultMessage(msg))
		default:
			converted, err := chatMessage(msg)
			if err != nil {
				return nil, err
			}
			input.Messages = append(input.Messages, converted)
		}
	}

	if len(tools) > 0 {
		toolConfig, err := toolConfiguration(tools)
		if err != nil {
			return nil, err
		}
		input.ToolConfig = toolConfig
	}

	out, err := c.api.Converse(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("converse: %s: %w", apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("converse: %w", err)
	}

	return parseOutput(out)
}

// Stream wraps Complete, delivering the full response as a single delta.
func (c *Client) Stream(ctx context.Context, messages []llm.Message, tools []llm.Tool) (<-chan llm.Delta, error) {
	resp, err := c.Complete(ctx, messages, tools)
	if err != nil {
		return nil, err
	}

	ch := make(chan llm.Delta, 1)
	ch <- llm.Delta{
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	}
	close(ch)

	return ch, nil
}

// chatMessage converts a user or assistant message, including tool-use blocks
// for assistant messages that requested tool calls.
func chatMessage(msg llm.Message) (brtypes.Message, error) {
	out := brtypes.Message{Role: brtypes.ConversationRole(msg.Role)}

	if msg.Content != "" {
		out.Content = append(out.Content, &brtypes.ContentBlockMemberText{Value: msg.Content})
	}
	for _, tc := range msg.Tools {
		var args map[string]any
		if len(tc.Function.Arguments) > 0 {
			if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
				return brtypes.Message{}, fmt.Errorf("decode tool arguments for %s: %w", tc.Function.Name, err)
			}
		}
		out.Content = append(out.Content, &brtypes.ContentBlockMemberToolUse{
			Value: brtypes.ToolUseBlock{
				ToolUseId: aws.String(tc.ID),
				Name:      aws.String(tc.Function.Name),
				Input:     document.NewLazyDocument(args),
			},
		})
	}
	return out, nil
}

// toolResultMessage converts a tool-role message into the Converse form: a
// user message carrying a tool result block.
func toolResultMessage(msg llm.Message) brtypes.Message {
	callID := ""
	if len(msg.Tools) > 0 {
		callID = msg.Tools[0].ID
	}
	return brtypes.Message{
		Role: brtypes.ConversationRoleUser,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberToolResult{
				Value: brtypes.ToolResultBlock{
					ToolUseId: aws.String(callID),
					Content: []brtypes.ToolResultContentBlock{
						&brtypes.ToolResultContentBlockMemberText{Value: msg.Content},
					},
				},
			},
		},
	}
}

func toolConfiguration(tools []llm.Tool) (*brtypes.ToolConfiguration, error) {
	config := &brtypes.ToolConfiguration{}
	for _, tool := range tools {
		var schema map[string]any
		if len(tool.Function.Parameters) > 0 {
			if err := json.Unmarshal(tool.Function.Parameters, &schema); err != nil {
				return nil, fmt.Errorf("decode parameters schema for %s: %w", tool.Function.Name, err)
			}
		}
		config.Tools = append(config.Tools, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(tool.Function.Name),
				Description: aws.String(tool.Function.Description),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(schema),
				},
			},
		})
	}
	return config, nil
}

func parseOutput(out *bedrockruntime.ConverseOutput) (*llm.Response, error) {
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected converse output type %T", out.Output)
	}

	resp := &llm.Response{}
	var text strings.Builder
	for _, block := range msg.Value.Content {
		switch b := block.(type) {
		case *brtypes.ContentBlockMemberText:
			text.WriteString(b.Value)
		case *brtypes.ContentBlockMemberToolUse:
			args, err := b.Value.Input.MarshalSmithyDocument()
			if err != nil {
				return nil, fmt.Errorf("marshal tool input: %w", err)
			}
			resp.ToolCalls = append(resp.ToolCalls, llm.ToolCall{
				ID:   aws.ToString(b.Value.ToolUseId),
				Type: "function",
				Function: llm.FunctionCall{
					Name:      aws.ToString(b.Value.Name),
					Arguments: json.RawMessage(args),
				},
			})
		}
	}
	resp.Content = text.String()

	if out.Usage != nil {
		resp.Usage = llm.Usage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}
	return resp, nil
}

var _ llm.Provider = (*Client)(nil)
