// Package tools implements the evidence tool executors exposed to the LLM.
package tools

import (
	"encoding/json"
	"sort"

	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/schema"
)

// ToolName is the canonical name of a built-in tool. The set is closed:
// these three are the only tools the catalog ever declares, so an unlisted
// name from the model is a checked, handled case.
type ToolName string

const (
	ToolWebSearch      ToolName = "web_search"
	ToolXKeywordSearch ToolName = "x_keyword_search"
	ToolBrowsePage     ToolName = "browse_page"
)

// Registry holds the named evidence tools and exposes them for execution.
type Registry struct {
	tools map[string]schema.Tool
}

// NewRegistry builds the full evidence tool set from cfg.
func NewRegistry(cfg *config.Config) *Registry {
	return NewRegistryWith(
		NewWebSearchTool(cfg.Search.APIKey),
		NewXSearchTool(cfg.X.BearerToken),
		NewBrowsePageTool(cfg.Browse),
	)
}

// NewRegistryWith builds a registry from an explicit tool set.
func NewRegistryWith(ts ...schema.Tool) *Registry {
	r := &Registry{tools: make(map[string]schema.Tool, len(ts))}
	for _, t := range ts {
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the tool with the given name, or nil if not found.
func (r *Registry) Get(name string) schema.Tool {
	return r.tools[name]
}

// Definitions returns all tool definitions in OpenAI function-calling format.
func (r *Registry) Definitions() []map[string]any {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]map[string]any, 0, len(r.tools))
	for _, name := range names {
		t := r.tools[name]
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}

// intArg reads an optional integer argument, clamping to [1, max].
// JSON numbers decode as float64; plain ints are accepted for tests.
func intArg(params map[string]any, key string, def, max int) int {
	n := def
	if v, ok := params[key]; ok {
		switch x := v.(type) {
		case float64:
			n = int(x)
		case int:
			n = x
		}
	}
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}
