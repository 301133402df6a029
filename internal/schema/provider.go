package schema

import (
	"context"
	"encoding/json"
)

// ChatOptions configures a single LLM chat request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// ToolCallRequest is one tool call as returned by the model.
// Arguments is the raw JSON argument string, unparsed: the agent loop owns
// argument parsing and its failure policy.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// LLMResponse is the normalised response from the LLM provider.
type LLMResponse struct {
	Content      string // empty when the response contains only tool calls
	ToolCalls    []ToolCallRequest
	FinishReason string
	Usage        map[string]int
}

// HasToolCalls reports whether the response contains at least one tool call.
func (r LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// LLMProvider is the interface the chat-completion backend must satisfy.
type LLMProvider interface {
	Chat(ctx context.Context, transcript Transcript, tools []map[string]any, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
}
