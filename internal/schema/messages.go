// Package schema contains the core contracts shared across personaforge
// packages. Concrete implementations live in their respective packages; this
// package is the single canonical source of truth for every shared type.
package schema

import "encoding/json"

// ToolCall is one function call carried by an assistant message.
// Arguments holds the parsed argument object; parsing happens in the agent
// loop so a malformed argument string is surfaced there, not at the wire edge.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToWireMap serialises a ToolCall into the OpenAI wire-format map.
// Used by the provider when building the JSON request body.
func (tc ToolCall) ToWireMap() map[string]any {
	argsJSON, _ := json.Marshal(tc.Arguments)
	return map[string]any{
		"id":   tc.ID,
		"type": "function",
		"function": map[string]any{
			"name":      tc.Name,
			"arguments": string(argsJSON),
		},
	}
}

// Message is one entry in the transcript.
//
// Role is one of: "system", "user", "assistant", "tool".
//
// ToolCalls is populated for assistant messages that invoke tools; such a
// message must be followed by exactly one tool message per call before the
// next model invocation. ToolCallID and ToolName are set for tool results.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // "tool" role only
	ToolName   string // "tool" role only
}

// ToWireMap converts a Message to the OpenAI wire-format map.
func (m Message) ToWireMap() map[string]any {
	wire := map[string]any{
		"role":    m.Role,
		"content": m.Content,
	}
	if m.Role == "assistant" {
		if m.Content == "" {
			// Strict providers require "content" even for tool-call-only messages.
			wire["content"] = nil
		}
		if len(m.ToolCalls) > 0 {
			raw := make([]map[string]any, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				raw[i] = tc.ToWireMap()
			}
			wire["tool_calls"] = raw
		}
	}
	if m.Role == "tool" {
		wire["tool_call_id"] = m.ToolCallID
		wire["name"] = m.ToolName
	}
	return wire
}

// Transcript is the ordered, append-only list of messages exchanged with the
// LLM for one request. It owns typed append methods so callers never
// construct raw maps. A Transcript belongs to exactly one agent run and is
// discarded when the run ends.
type Transcript struct {
	Messages []Message
}

// NewTranscript returns a Transcript initialised with the given messages.
// Called with no arguments it returns an empty Transcript ready for use.
func NewTranscript(msgs ...Message) Transcript {
	if len(msgs) == 0 {
		return Transcript{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Transcript{Messages: out}
}

// AddSystem appends a system message.
func (t *Transcript) AddSystem(content string) {
	t.Messages = append(t.Messages, Message{Role: "system", Content: content})
}

// AddUser appends a user message.
func (t *Transcript) AddUser(content string) {
	t.Messages = append(t.Messages, Message{Role: "user", Content: content})
}

// AddAssistant appends an assistant message with optional tool calls.
func (t *Transcript) AddAssistant(content string, toolCalls []ToolCall) {
	t.Messages = append(t.Messages, Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResult appends a tool-result message tagged with the originating
// call's identifier.
func (t *Transcript) AddToolResult(toolCallID, toolName, result string) {
	t.Messages = append(t.Messages, Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: toolCallID,
		ToolName:   toolName,
	})
}

// ToWire converts the transcript to the OpenAI wire format.
func (t *Transcript) ToWire() []map[string]any {
	out := make([]map[string]any, 0, len(t.Messages))
	for _, m := range t.Messages {
		out = append(out, m.ToWireMap())
	}
	return out
}
