package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/personaforge/personaforge/internal/schema"
)

const (
	braveSearchURL = "https://api.search.brave.com/res/v1/web/search"
	maxWebResults  = 20
)

// WebSearchTool searches the web using the Brave Search API and returns
// normalised SearchResult evidence.
type WebSearchTool struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewWebSearchTool creates a WebSearchTool. An empty apiKey is allowed at
// construction time; it surfaces as an UpstreamError when the tool is
// actually invoked.
func NewWebSearchTool(apiKey string) *WebSearchTool {
	return &WebSearchTool{
		apiKey:     apiKey,
		endpoint:   braveSearchURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *WebSearchTool) Name() string { return string(ToolWebSearch) }
func (t *WebSearchTool) Description() string {
	return "Search the web. Returns result titles, links, and snippets."
}
func (t *WebSearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Search query"
			},
			"num_results": {
				"type": "integer",
				"description": "Number of results (1-20)",
				"minimum": 1,
				"maximum": 20
			}
		},
		"required": ["query"]
	}`)
}

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return "", schema.ValidationError{Reason: "web_search: query is required"}
	}
	if t.apiKey == "" {
		return "", schema.NewUpstreamError("web search", 0, "search API key not configured")
	}
	n := intArg(params, "num_results", 10, maxWebResults)

	results, err := t.Search(ctx, query, n)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshal search results: %w", err)
	}
	return string(payload), nil
}

// Search runs one provider query and maps the response to SearchResult,
// truncated to numResults. Also used directly by the seeder.
func (t *WebSearchTool) Search(ctx context.Context, query string, numResults int) ([]schema.SearchResult, error) {
	if t.apiKey == "" {
		return nil, schema.NewUpstreamError("web search", 0, "search API key not configured")
	}
	if numResults < 1 || numResults > maxWebResults {
		numResults = maxWebResults
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", numResults))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, schema.NewUpstreamError("web search", resp.StatusCode, string(raw))
	}

	var data struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, schema.NewUpstreamError("web search", resp.StatusCode, "unparseable response: "+string(raw))
	}

	results := make([]schema.SearchResult, 0, numResults)
	for i, item := range data.Web.Results {
		if i >= numResults {
			break
		}
		results = append(results, schema.SearchResult{
			Title:   item.Title,
			Link:    item.URL,
			Snippet: item.Description,
		})
	}
	return results, nil
}
