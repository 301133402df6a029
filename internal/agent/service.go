// Package agent implements the evidence-gathering orchestration: the seeder,
// the model ↔ tool loop, and the final persona extraction.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/events"
	"github.com/personaforge/personaforge/internal/schema"
	"github.com/personaforge/personaforge/internal/tools"
)

// Service runs one profile request end to end: seed evidence, drive the
// loop, validate the terminal artifact. Each call owns its own transcript;
// nothing is shared across requests.
type Service struct {
	provider schema.LLMProvider
	registry *tools.Registry
	seeder   *Seeder
	cfg      *config.Config
	broker   *events.Broker
}

func NewService(
	provider schema.LLMProvider,
	registry *tools.Registry,
	seeder *Seeder,
	cfg *config.Config,
	broker *events.Broker,
) *Service {
	return &Service{
		provider: provider,
		registry: registry,
		seeder:   seeder,
		cfg:      cfg,
		broker:   broker,
	}
}

// ProfileResult is the outcome of one successful profile run.
type ProfileResult struct {
	Persona      *schema.PersonaDocument
	XHandle      string
	LinkedInSlug string
	Turns        int
	ToolsUsed    []string
}

// BuildProfile seeds the transcript, runs the loop, and parses the persona.
// The caller has already validated that at least one URL is present.
func (s *Service) BuildProfile(ctx context.Context, requestID, linkedinURL, xURL string) (*ProfileResult, error) {
	s.broker.Publish(events.RunEvent{
		RequestID: requestID,
		Stage:     events.StageSeeding,
	})

	seed := s.seeder.Seed(ctx, linkedinURL, xURL)
	slog.Info("Seeded evidence",
		"request_id", requestID,
		"x_handle", seed.XHandle,
		"linkedin_slug", seed.LinkedInSlug,
		"messages", len(seed.Messages),
	)

	transcript := schema.NewTranscript()
	transcript.AddSystem(systemPrompt)
	transcript.AddUser(BuildDirective(linkedinURL, xURL))
	transcript.Messages = append(transcript.Messages, seed.Messages...)

	loop := NewLoop(
		s.provider,
		s.registry,
		schema.NewChatOptions(s.cfg.LLM.Model, s.cfg.LLM.MaxTokens, s.cfg.LLM.Temperature),
		s.cfg.Agent.MaxTurns,
		s.broker,
		requestID,
	)

	res, err := loop.Run(ctx, &transcript)
	if err != nil {
		return nil, err
	}

	persona, err := ParsePersona(res.FinalContent)
	if err != nil {
		return nil, fmt.Errorf("validate final answer: %w", err)
	}

	return &ProfileResult{
		Persona:      persona,
		XHandle:      seed.XHandle,
		LinkedInSlug: seed.LinkedInSlug,
		Turns:        res.Turns,
		ToolsUsed:    res.ToolsUsed,
	}, nil
}
