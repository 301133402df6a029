package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface all LLM-callable evidence tools must satisfy.
//
// Execute returns the JSON-serialised evidence payload for the transcript.
// A non-nil error means the upstream service failed; per the orchestration
// policy such failures abort the whole request rather than being fed back
// to the model.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}
