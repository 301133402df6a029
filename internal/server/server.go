// Package server exposes the profile service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/personaforge/personaforge/internal/agent"
	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/events"
	"github.com/personaforge/personaforge/internal/schema"
	"github.com/personaforge/personaforge/internal/shared/llmutils"
)

// maxRequestBody bounds the inbound request body size.
const maxRequestBody = 1 << 20

// Server handles the single profile route plus health and debug endpoints.
type Server struct {
	service *agent.Service
	broker  *events.Broker
	cfg     *config.Config
}

func NewServer(service *agent.Service, broker *events.Broker, cfg *config.Config) *Server {
	return &Server{service: service, broker: broker, cfg: cfg}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/", s.profile)
	r.Get("/health", s.health)
	r.Get("/debug/events", s.streamEvents)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONStatus(w, map[string]string{"error": "method not allowed, use POST"}, http.StatusMethodNotAllowed)
	})

	return r
}

// profileRequest is the inbound body of POST /.
type profileRequest struct {
	LinkedInURL string `json:"linkedin_url"`
	XURL        string `json:"x_url"`
}

// profileResponse is the success body of POST /.
type profileResponse struct {
	LinkedInURL string                  `json:"linkedin_url"`
	XURL        string                  `json:"x_url"`
	Persona     *schema.PersonaDocument `json:"persona"`
	Debug       map[string]any          `json:"debug"`
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	started := time.Now()

	var body profileRequest
	raw, err := readBody(r)
	if err != nil {
		writeJSONStatus(w, map[string]string{"error": "failed to read request body"}, http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		writeJSONStatus(w, map[string]string{
			"error":    "request body is not valid JSON",
			"bodyText": llmutils.Truncate(string(raw), 500),
		}, http.StatusBadRequest)
		return
	}

	if body.LinkedInURL == "" && body.XURL == "" {
		writeJSONStatus(w, map[string]string{
			"error": "at least one of linkedin_url or x_url is required",
		}, http.StatusBadRequest)
		return
	}

	if s.cfg.LLM.APIKey == "" {
		writeJSONStatus(w, map[string]string{
			"error": schema.ConfigError{Setting: "LLM API key"}.Error(),
		}, http.StatusInternalServerError)
		return
	}

	slog.Info("Profile request",
		"request_id", requestID,
		"linkedin_url", body.LinkedInURL,
		"x_url", body.XURL,
	)

	result, err := s.service.BuildProfile(r.Context(), requestID, body.LinkedInURL, body.XURL)
	if err != nil {
		status := http.StatusInternalServerError
		var vErr schema.ValidationError
		if errors.As(err, &vErr) {
			status = http.StatusBadRequest
		}
		slog.Error("Profile request failed", "request_id", requestID, "err", err)
		writeJSONStatus(w, map[string]string{"error": err.Error()}, status)
		return
	}

	slog.Info("Profile request done",
		"request_id", requestID,
		"turns", result.Turns,
		"elapsed", time.Since(started).Round(time.Millisecond).String(),
	)

	writeJSON(w, profileResponse{
		LinkedInURL: body.LinkedInURL,
		XURL:        body.XURL,
		Persona:     result.Persona,
		Debug: map[string]any{
			"request_id":           requestID,
			"seeded_x_handle":      result.XHandle,
			"seeded_linkedin_slug": result.LinkedInSlug,
			"turns":                result.Turns,
			"tools_used":           result.ToolsUsed,
		},
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(nil, r.Body, maxRequestBody))
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}
