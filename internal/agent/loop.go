package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/personaforge/personaforge/internal/events"
	"github.com/personaforge/personaforge/internal/schema"
	"github.com/personaforge/personaforge/internal/shared/llmutils"
	"github.com/personaforge/personaforge/internal/tools"
)

// ErrTurnBudgetExhausted is returned when the loop hits its turn budget
// without the model producing a final answer.
var ErrTurnBudgetExhausted = fmt.Errorf("turn budget exhausted without a final answer")

// Loop executes the model ↔ tool iteration for one request.
//
// The transcript it drives is owned by exactly one Run call and never shared.
// Tool calls requested within one assistant turn run sequentially, in the
// order the model listed them; across turns the next model invocation always
// observes every prior tool result.
type Loop struct {
	provider  schema.LLMProvider
	registry  *tools.Registry
	opts      schema.ChatOptions
	maxTurns  int
	broker    *events.Broker
	requestID string
}

func NewLoop(
	provider schema.LLMProvider,
	registry *tools.Registry,
	opts schema.ChatOptions,
	maxTurns int,
	broker *events.Broker,
	requestID string,
) *Loop {
	if maxTurns <= 0 {
		maxTurns = 16
	}
	return &Loop{
		provider:  provider,
		registry:  registry,
		opts:      opts,
		maxTurns:  maxTurns,
		broker:    broker,
		requestID: requestID,
	}
}

// LoopResult is the successful outcome of one Run.
type LoopResult struct {
	FinalContent string
	Turns        int
	ToolsUsed    []string
}

// Run drives the loop until the model answers without tool calls or the
// turn budget runs out. Any provider or executor failure aborts the whole
// run; the single graceful degradation is an unrecognised tool name, which
// is reported back to the model as an in-band error result.
func (l *Loop) Run(ctx context.Context, transcript *schema.Transcript) (*LoopResult, error) {
	var toolsUsed []string

	for turn := 1; turn <= l.maxTurns; turn++ {
		l.publish(events.StageTurn, fmt.Sprintf("turn %d/%d", turn, l.maxTurns))

		resp, err := l.provider.Chat(ctx, *transcript, l.registry.Definitions(), l.opts)
		if err != nil {
			return nil, fmt.Errorf("model invocation (turn %d): %w", turn, err)
		}

		if !resp.HasToolCalls() {
			transcript.AddAssistant(resp.Content, nil)
			l.publish(events.StageDone, fmt.Sprintf("final answer after %d turns", turn))
			return &LoopResult{
				FinalContent: llmutils.StripThink(resp.Content),
				Turns:        turn,
				ToolsUsed:    toolsUsed,
			}, nil
		}

		calls, err := parseToolCalls(resp.ToolCalls)
		if err != nil {
			return nil, err
		}
		transcript.AddAssistant(resp.Content, calls)

		for _, tc := range calls {
			toolsUsed = append(toolsUsed, tc.Name)
			l.publish(events.StageToolCall, llmutils.ToolHint([]schema.ToolCall{tc}))
			slog.Info("Tool call", "request_id", l.requestID, "name", tc.Name)

			result, err := l.dispatch(ctx, tc)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", tc.Name, err)
			}
			transcript.AddToolResult(tc.ID, tc.Name, result)
		}
	}

	l.publish(events.StageFailed, fmt.Sprintf("no final answer after %d turns", l.maxTurns))
	return nil, ErrTurnBudgetExhausted
}

// dispatch routes one call to its executor. An unknown tool name yields an
// in-band error payload so the model can adapt; every other failure
// propagates to the caller.
func (l *Loop) dispatch(ctx context.Context, tc schema.ToolCall) (string, error) {
	t := l.registry.Get(tc.Name)
	if t == nil {
		payload, _ := json.Marshal(map[string]string{
			"error": "Unknown tool: " + tc.Name,
		})
		return string(payload), nil
	}
	return t.Execute(ctx, tc.Arguments)
}

// parseToolCalls decodes the raw argument JSON of every requested call.
// Malformed arguments fail the whole run; the model does not get a second
// chance at broken argument syntax.
func parseToolCalls(requests []schema.ToolCallRequest) ([]schema.ToolCall, error) {
	calls := make([]schema.ToolCall, 0, len(requests))
	for _, req := range requests {
		args := map[string]any{}
		if len(req.Arguments) > 0 {
			if err := json.Unmarshal(req.Arguments, &args); err != nil {
				return nil, fmt.Errorf("malformed arguments for tool %s: %w", req.Name, err)
			}
		}
		calls = append(calls, schema.ToolCall{ID: req.ID, Name: req.Name, Arguments: args})
	}
	return calls, nil
}

func (l *Loop) publish(stage, detail string) {
	if l.broker == nil {
		return
	}
	l.broker.Publish(events.RunEvent{
		RequestID: l.requestID,
		Stage:     stage,
		Detail:    detail,
	})
}
