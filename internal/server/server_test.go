package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/personaforge/personaforge/internal/agent"
	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/events"
	"github.com/personaforge/personaforge/internal/schema"
	"github.com/personaforge/personaforge/internal/tools"
)

type stubProvider struct {
	response schema.LLMResponse
}

func (p *stubProvider) Chat(context.Context, schema.Transcript, []map[string]any, schema.ChatOptions) (schema.LLMResponse, error) {
	return p.response, nil
}
func (p *stubProvider) DefaultModel() string { return "test-model" }

type stubTimeline struct{}

func (stubTimeline) SearchPosts(context.Context, string, int, string) ([]schema.SocialPost, error) {
	return []schema.SocialPost{{Text: "a post", Username: "jdoe"}}, nil
}

type stubWeb struct{}

func (stubWeb) Search(context.Context, string, int) ([]schema.SearchResult, error) {
	return nil, nil
}

func newTestServer(provider schema.LLMProvider) *Server {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"

	broker := events.NewBroker()
	seeder := agent.NewSeeder(stubTimeline{}, stubWeb{}, cfg.Agent)
	service := agent.NewService(provider, tools.NewRegistryWith(), seeder, &cfg, broker)
	return NewServer(service, broker, &cfg)
}

func postJSON(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestProfile_Success(t *testing.T) {
	provider := &stubProvider{response: schema.LLMResponse{
		Content:      `{"name": "Jane Doe", "headline": "Platform Engineer"}`,
		FinishReason: "stop",
	}}
	router := newTestServer(provider).Router()

	rec := postJSON(t, router, `{"x_url": "https://x.com/jdoe"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		XURL    string         `json:"x_url"`
		Persona map[string]any `json:"persona"`
		Debug   map[string]any `json:"debug"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.XURL != "https://x.com/jdoe" {
		t.Errorf("x_url echoed wrong: %q", resp.XURL)
	}
	if resp.Persona["name"] != "Jane Doe" {
		t.Errorf("persona.name = %v", resp.Persona["name"])
	}
	if resp.Debug["seeded_x_handle"] != "jdoe" {
		t.Errorf("debug.seeded_x_handle = %v", resp.Debug["seeded_x_handle"])
	}
	if resp.Debug["request_id"] == "" {
		t.Error("debug.request_id missing")
	}
	if resp.Debug["turns"] != float64(1) {
		t.Errorf("debug.turns = %v", resp.Debug["turns"])
	}
}

func TestProfile_MissingURLs(t *testing.T) {
	router := newTestServer(&stubProvider{}).Router()

	rec := postJSON(t, router, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "linkedin_url or x_url") {
		t.Errorf("error message unexpected: %s", rec.Body.String())
	}
}

func TestProfile_InvalidJSON(t *testing.T) {
	router := newTestServer(&stubProvider{}).Router()

	rec := postJSON(t, router, `{"x_url": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error response is not JSON: %v", err)
	}
	if resp["bodyText"] != `{"x_url": ` {
		t.Errorf("bodyText excerpt = %q", resp["bodyText"])
	}
}

func TestProfile_MissingAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	broker := events.NewBroker()
	seeder := agent.NewSeeder(stubTimeline{}, stubWeb{}, cfg.Agent)
	service := agent.NewService(&stubProvider{}, tools.NewRegistryWith(), seeder, &cfg, broker)
	router := NewServer(service, broker, &cfg).Router()

	rec := postJSON(t, router, `{"x_url": "https://x.com/jdoe"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "LLM API key") {
		t.Errorf("error should name the missing setting: %s", rec.Body.String())
	}
}

func TestProfile_MalformedModelOutput(t *testing.T) {
	provider := &stubProvider{response: schema.LLMResponse{
		Content:      "I could not find enough evidence.",
		FinishReason: "stop",
	}}
	router := newTestServer(provider).Router()

	rec := postJSON(t, router, `{"x_url": "https://x.com/jdoe"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "final answer") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestServer(&stubProvider{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "use POST") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	router := newTestServer(&stubProvider{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
