package llmutils

import (
	"strings"
	"testing"

	"github.com/personaforge/personaforge/internal/schema"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long = %q", got)
	}
}

func TestStripThink(t *testing.T) {
	in := "<think>reasoning here</think>\n{\"name\":\"Jane\"}"
	if got := StripThink(in); got != `{"name":"Jane"}` {
		t.Errorf("StripThink = %q", got)
	}
	if got := StripThink("plain text"); got != "plain text" {
		t.Errorf("StripThink passthrough = %q", got)
	}
}

func TestStringOrDefault(t *testing.T) {
	if got := StringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("empty = %q", got)
	}
	if got := StringOrDefault("value", "fallback"); got != "value" {
		t.Errorf("non-empty = %q", got)
	}
}

func TestToolHint(t *testing.T) {
	hint := ToolHint([]schema.ToolCall{
		{Name: "web_search", Arguments: map[string]any{"query": "jane doe"}},
		{Name: "browse_page", Arguments: map[string]any{"url": "https://janedoe.dev"}},
		{Name: "x_keyword_search", Arguments: map[string]any{}},
	})
	if !strings.Contains(hint, `web_search("jane doe")`) {
		t.Errorf("query hint missing: %q", hint)
	}
	if !strings.Contains(hint, `browse_page("https://janedoe.dev")`) {
		t.Errorf("url hint missing: %q", hint)
	}
	if !strings.Contains(hint, "x_keyword_search") {
		t.Errorf("bare name missing: %q", hint)
	}
}
