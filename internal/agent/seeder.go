package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/schema"
	"github.com/personaforge/personaforge/internal/shared/urlutils"
	"github.com/personaforge/personaforge/internal/tools"
)

// TimelineSearcher fetches social posts; satisfied by tools.XSearchTool.
type TimelineSearcher interface {
	SearchPosts(ctx context.Context, query string, limit int, mode string) ([]schema.SocialPost, error)
}

// WebSearcher runs one web-search query; satisfied by tools.WebSearchTool.
type WebSearcher interface {
	Search(ctx context.Context, query string, numResults int) ([]schema.SearchResult, error)
}

// Seeder pre-gathers a baseline of evidence before the model's first turn.
// Model tool selection is not guaranteed to be thorough; seeding guarantees a
// non-empty evidence floor and reduces required turns.
type Seeder struct {
	x   TimelineSearcher
	web WebSearcher
	cfg config.AgentConfig
}

func NewSeeder(x TimelineSearcher, web WebSearcher, cfg config.AgentConfig) *Seeder {
	return &Seeder{x: x, web: web, cfg: cfg}
}

// SeedResult carries the identifiers derived from the input URLs and the
// synthetic transcript turn holding the pre-gathered evidence.
type SeedResult struct {
	XHandle      string
	LinkedInSlug string
	// Messages is empty, or one assistant message carrying the seed tool
	// calls followed by exactly one tool result per call, preserving the
	// transcript tagging invariant.
	Messages []schema.Message
}

// seedCall is one completed pre-run tool call.
type seedCall struct {
	call   schema.ToolCall
	result string
}

// Seed derives an X handle and a LinkedIn slug from the input URLs and runs
// the corresponding evidence pre-fetches concurrently. A failed pre-fetch is
// recorded as an in-band error payload rather than aborting: seeding is
// best-effort, the model can re-gather during the loop.
func (s *Seeder) Seed(ctx context.Context, linkedinURL, xURL string) *SeedResult {
	res := &SeedResult{
		XHandle:      urlutils.ExtractXUsername(xURL),
		LinkedInSlug: urlutils.ExtractLinkedInSlug(linkedinURL),
	}

	var posts []schema.SocialPost

	var queries []string
	if res.LinkedInSlug != "" {
		queries = []string{
			fmt.Sprintf("site:linkedin.com/in/%s", res.LinkedInSlug),
			fmt.Sprintf("%q linkedin", res.LinkedInSlug),
		}
	}
	merged := make([][]schema.SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)

	if res.XHandle != "" {
		g.Go(func() error {
			found, err := s.x.SearchPosts(gctx,
				fmt.Sprintf("from:%s -is:retweet", res.XHandle),
				s.cfg.SeedPostLimit, "Latest")
			if err != nil {
				slog.Warn("Seed timeline fetch failed", "handle", res.XHandle, "err", err)
				return nil
			}
			posts = found
			return nil
		})
	}

	for i, q := range queries {
		g.Go(func() error {
			found, err := s.web.Search(gctx, q, s.cfg.SeedSearchResults)
			if err != nil {
				slog.Warn("Seed web search failed", "query", q, "err", err)
				return nil
			}
			merged[i] = found
			return nil
		})
	}

	_ = g.Wait() // goroutines only log failures, never return errors

	var results []schema.SearchResult
	for _, found := range merged {
		results = append(results, found...)
	}
	results = schema.DedupeSearchResults(results)

	res.Messages = s.buildMessages(res, posts, results)
	return res
}

// buildMessages wraps the pre-fetched evidence in one synthetic assistant
// turn so the model sees it as ordinary tool results.
func (s *Seeder) buildMessages(res *SeedResult, posts []schema.SocialPost, results []schema.SearchResult) []schema.Message {
	var calls []seedCall

	if res.XHandle != "" {
		query := fmt.Sprintf("from:%s -is:retweet", res.XHandle)
		calls = append(calls, seedCall{
			call: schema.ToolCall{
				ID:   "seed_" + uuid.NewString()[:8],
				Name: string(tools.ToolXKeywordSearch),
				Arguments: map[string]any{
					"query": query,
					"limit": s.cfg.SeedPostLimit,
					"mode":  "Latest",
				},
			},
			result: marshalSeedPayload(posts, "timeline fetch returned no posts"),
		})
	}

	if res.LinkedInSlug != "" {
		calls = append(calls, seedCall{
			call: schema.ToolCall{
				ID:   "seed_" + uuid.NewString()[:8],
				Name: string(tools.ToolWebSearch),
				Arguments: map[string]any{
					"query":       fmt.Sprintf("site:linkedin.com/in/%s", res.LinkedInSlug),
					"num_results": s.cfg.SeedSearchResults,
				},
			},
			result: marshalSeedPayload(results, "search returned no results"),
		})
	}

	if len(calls) == 0 {
		return nil
	}

	msgs := make([]schema.Message, 0, len(calls)+1)
	assistant := schema.Message{Role: "assistant"}
	for _, c := range calls {
		assistant.ToolCalls = append(assistant.ToolCalls, c.call)
	}
	msgs = append(msgs, assistant)
	for _, c := range calls {
		msgs = append(msgs, schema.Message{
			Role:       "tool",
			Content:    c.result,
			ToolCallID: c.call.ID,
			ToolName:   c.call.Name,
		})
	}
	return msgs
}

// marshalSeedPayload serialises evidence, substituting an in-band note when
// the pre-fetch yielded nothing.
func marshalSeedPayload[T any](items []T, emptyNote string) string {
	if len(items) == 0 {
		payload, _ := json.Marshal(map[string]string{"note": emptyNote})
		return string(payload)
	}
	payload, err := json.Marshal(items)
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(fallback)
	}
	return string(payload)
}
