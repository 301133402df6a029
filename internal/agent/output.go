package agent

import (
	"encoding/json"
	"strings"

	"github.com/personaforge/personaforge/internal/schema"
)

// ParsePersona extracts the PersonaDocument from the model's final answer.
//
// It tries a direct parse first. Models sometimes wrap the JSON in prose or
// markdown fences, so on failure it retries on the substring between the
// first '{' and the last '}'. If neither parses, the run has no recoverable
// structure and a MalformedOutputError is returned.
//
// No shape validation happens beyond the parse: every PersonaDocument field
// is optional and consumers treat absence as "unsupported by evidence".
func ParsePersona(text string) (*schema.PersonaDocument, error) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "{") {
		var doc schema.PersonaDocument
		if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
			return &doc, nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, schema.MalformedOutputError{Detail: "no JSON object found in final answer"}
	}

	var doc schema.PersonaDocument
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &doc); err != nil {
		return nil, schema.MalformedOutputError{Detail: err.Error()}
	}
	return &doc, nil
}
