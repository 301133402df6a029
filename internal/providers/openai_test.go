package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/schema"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return NewOpenAIProvider(config.LLMConfig{
		APIKey:  "test-key",
		APIBase: srv.URL,
		Model:   "test-model",
	}), srv
}

func TestChat_FinalAnswer(t *testing.T) {
	var gotBody map[string]any
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization header = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"choices": [{"message": {"content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	})
	defer srv.Close()

	transcript := schema.NewTranscript()
	transcript.AddUser("hi")

	resp, err := provider.Chat(context.Background(), transcript, nil, schema.NewChatOptions("", 0, 0.3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" || resp.HasToolCalls() {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Usage["total_tokens"] != 12 {
		t.Errorf("usage not mapped: %v", resp.Usage)
	}

	// Empty opts fall back to the configured model and a sane token limit.
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}
	if _, present := gotBody["tools"]; present {
		t.Error("tools must be omitted when none are provided")
	}
}

func TestChat_ToolCalls(t *testing.T) {
	var gotBody map[string]any
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"choices": [{
				"message": {
					"content": null,
					"tool_calls": [{
						"id": "call_abc",
						"type": "function",
						"function": {"name": "web_search", "arguments": "{\"query\":\"jane\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}]
		}`))
	})
	defer srv.Close()

	tools := []map[string]any{{"type": "function", "function": map[string]any{"name": "web_search"}}}
	transcript := schema.NewTranscript()
	transcript.AddUser("research jane")

	resp, err := provider.Chat(context.Background(), transcript, tools, schema.NewChatOptions("test-model", 1024, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasToolCalls() || len(resp.ToolCalls) != 1 {
		t.Fatalf("tool calls not parsed: %+v", resp)
	}
	tc := resp.ToolCalls[0]
	if tc.ID != "call_abc" || tc.Name != "web_search" {
		t.Errorf("unexpected tool call: %+v", tc)
	}
	if string(tc.Arguments) != `{"query":"jane"}` {
		t.Errorf("arguments kept raw, got %s", tc.Arguments)
	}
	if resp.Content != "" {
		t.Errorf("null content should map to empty string, got %q", resp.Content)
	}

	if gotBody["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v", gotBody["tool_choice"])
	}
}

func TestChat_UpstreamError(t *testing.T) {
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid api key"}}`, http.StatusUnauthorized)
	})
	defer srv.Close()

	_, err := provider.Chat(context.Background(), schema.NewTranscript(), nil, schema.ChatOptions{})
	var upstream schema.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", upstream.Status)
	}
	if !strings.Contains(upstream.Body, "invalid api key") {
		t.Errorf("body excerpt missing: %q", upstream.Body)
	}
}

func TestChat_BodyExcerptTruncated(t *testing.T) {
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 1000), http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := provider.Chat(context.Background(), schema.NewTranscript(), nil, schema.ChatOptions{})
	var upstream schema.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if len(upstream.Body) > 300 {
		t.Errorf("body excerpt length %d exceeds limit", len(upstream.Body))
	}
}

func TestChat_EmptyChoices(t *testing.T) {
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})
	defer srv.Close()

	_, err := provider.Chat(context.Background(), schema.NewTranscript(), nil, schema.ChatOptions{})
	var upstream schema.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestChat_WireFormat(t *testing.T) {
	var gotBody struct {
		Messages []map[string]any `json:"messages"`
	}
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	})
	defer srv.Close()

	transcript := schema.NewTranscript()
	transcript.AddSystem("sys")
	transcript.AddAssistant("", []schema.ToolCall{{ID: "call_1", Name: "web_search", Arguments: map[string]any{"query": "q"}}})
	transcript.AddToolResult("call_1", "web_search", `{"results":[]}`)

	if _, err := provider.Chat(context.Background(), transcript, nil, schema.ChatOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotBody.Messages) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(gotBody.Messages))
	}

	assistant := gotBody.Messages[1]
	if assistant["content"] != nil {
		t.Errorf("tool-call-only assistant content should be null, got %v", assistant["content"])
	}
	calls, ok := assistant["tool_calls"].([]any)
	if !ok || len(calls) != 1 {
		t.Fatalf("tool_calls missing from assistant wire message: %v", assistant)
	}

	result := gotBody.Messages[2]
	if result["tool_call_id"] != "call_1" || result["name"] != "web_search" {
		t.Errorf("tool result wire fields: %v", result)
	}
}
