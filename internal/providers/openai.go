// Package providers implements the chat-completion backend client.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/schema"
)

// OpenAIProvider makes direct HTTP calls to any OpenAI-compatible
// chat-completions endpoint.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	httpClient   *http.Client
}

// NewOpenAIProvider constructs a provider from the LLM config section.
func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		apiKey:       cfg.APIKey,
		apiBase:      base,
		defaultModel: cfg.Model,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider. A non-success status from the backend
// is returned as a schema.UpstreamError; the caller aborts the run on it.
func (p *OpenAIProvider) Chat(
	ctx context.Context,
	transcript schema.Transcript,
	tools []map[string]any,
	opts schema.ChatOptions,
) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	body := map[string]any{
		"model":       model,
		"messages":    transcript.ToWire(),
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
	}
	if len(tools) > 0 {
		body["tools"] = tools
		body["tool_choice"] = "auto"
	}

	data, err := json.Marshal(body)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return schema.LLMResponse{}, schema.TimeoutError{Op: "chat completion"}
		}
		return schema.LLMResponse{}, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return schema.LLMResponse{}, schema.NewUpstreamError("chat completion", resp.StatusCode, string(raw))
	}

	return parseResponse(raw)
}

// respBody is the subset of the chat completion response we care about.
type respBody struct {
	Choices []struct {
		Message struct {
			Content   any `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseResponse(raw []byte) (schema.LLMResponse, error) {
	var body respBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, schema.NewUpstreamError("chat completion", 0, "unparseable response body: "+string(raw))
	}
	if len(body.Choices) == 0 {
		return schema.LLMResponse{}, schema.NewUpstreamError("chat completion", 0, "empty choices in response")
	}

	msg := body.Choices[0].Message

	content := ""
	if c, ok := msg.Content.(string); ok {
		content = c
	}

	var toolCalls []schema.ToolCallRequest
	for _, tc := range msg.ToolCalls {
		toolCalls = append(toolCalls, schema.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	finish := body.Choices[0].FinishReason
	if finish == "" {
		finish = "stop"
	}

	return schema.LLMResponse{
		Content:      content,
		ToolCalls:    toolCalls,
		FinishReason: finish,
		Usage: map[string]int{
			"prompt_tokens":     body.Usage.PromptTokens,
			"completion_tokens": body.Usage.CompletionTokens,
			"total_tokens":      body.Usage.TotalTokens,
		},
	}, nil
}
