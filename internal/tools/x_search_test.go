package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/personaforge/personaforge/internal/schema"
)

const xUserFixture = `{"data": {"id": "111", "username": "jdoe", "name": "Jane Doe", "description": "builds things", "location": "Berlin"}}`

const xTimelineFixture = `{
	"data": [
		{"id": "1", "text": "shipping", "created_at": "2026-08-01T10:00:00Z", "conversation_id": "1",
		 "public_metrics": {"like_count": 3, "retweet_count": 1, "reply_count": 0, "quote_count": 0}},
		{"id": "2", "text": "replying", "created_at": "2026-08-02T10:00:00Z", "conversation_id": "9"}
	]
}`

const xSearchFixture = `{
	"data": [
		{"id": "5", "text": "about go", "created_at": "2026-08-03T10:00:00Z", "conversation_id": "5", "author_id": "111"}
	],
	"includes": {"users": [{"id": "111", "username": "jdoe", "name": "Jane Doe"}]}
}`

func newTestXSearch(handler http.HandlerFunc) (*XSearchTool, *httptest.Server) {
	srv := httptest.NewServer(handler)
	tool := NewXSearchTool("test-token")
	tool.apiBase = srv.URL
	tool.backoff = 10 * time.Millisecond
	return tool, srv
}

func TestXSearch_FromClauseFetchesTimeline(t *testing.T) {
	var timelineQuery map[string][]string
	tool, srv := newTestXSearch(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/users/by/username/jdoe"):
			w.Write([]byte(xUserFixture))
		case strings.Contains(r.URL.Path, "/users/111/tweets"):
			timelineQuery = r.URL.Query()
			w.Write([]byte(xTimelineFixture))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})
	defer srv.Close()

	posts, err := tool.SearchPosts(context.Background(), "from:jdoe -is:retweet", 50, "Latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := timelineQuery["exclude"]; len(got) != 1 || got[0] != "retweets" {
		t.Errorf("retweet exclusion not forwarded: %v", timelineQuery)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.Username != "jdoe" || first.Bio != "builds things" || first.Location != "Berlin" {
		t.Errorf("author fields not propagated: %+v", first)
	}
	if first.Link != "https://x.com/jdoe/status/1" {
		t.Errorf("link = %q", first.Link)
	}
	if first.Reply {
		t.Error("post with conversation_id == id must not be a reply")
	}
	if first.Metrics == nil || first.Metrics.Likes != 3 || first.Metrics.Retweets != 1 {
		t.Errorf("metrics not mapped: %+v", first.Metrics)
	}
	if !posts[1].Reply {
		t.Error("post with foreign conversation_id must be a reply")
	}
	if posts[1].Metrics != nil {
		t.Errorf("missing public_metrics should yield nil Metrics, got %+v", posts[1].Metrics)
	}
}

func TestXSearch_KeywordSearch(t *testing.T) {
	var searchQuery map[string][]string
	tool, srv := newTestXSearch(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/tweets/search/recent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		searchQuery = r.URL.Query()
		w.Write([]byte(xSearchFixture))
	})
	defer srv.Close()

	posts, err := tool.SearchPosts(context.Background(), "golang personas", 20, "Latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := searchQuery["sort_order"]; len(got) != 1 || got[0] != "recency" {
		t.Errorf("Latest mode should request recency ordering: %v", searchQuery)
	}
	if len(posts) != 1 || posts[0].Username != "jdoe" {
		t.Errorf("author expansion not joined: %+v", posts)
	}
}

func TestXSearch_TopModeUsesRelevancy(t *testing.T) {
	var sortOrder string
	tool, srv := newTestXSearch(func(w http.ResponseWriter, r *http.Request) {
		sortOrder = r.URL.Query().Get("sort_order")
		w.Write([]byte(xSearchFixture))
	})
	defer srv.Close()

	if _, err := tool.SearchPosts(context.Background(), "golang", 20, "Top"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sortOrder != "relevancy" {
		t.Errorf("sort_order = %q, want relevancy", sortOrder)
	}
}

func TestXSearch_RateLimitRetriedOnce(t *testing.T) {
	var hits int
	tool, srv := newTestXSearch(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(xSearchFixture))
	})
	defer srv.Close()

	posts, err := tool.SearchPosts(context.Background(), "golang", 20, "Top")
	if err != nil {
		t.Fatalf("retry after single 429 should succeed: %v", err)
	}
	if hits != 2 {
		t.Errorf("expected 2 attempts, got %d", hits)
	}
	if len(posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(posts))
	}
}

func TestXSearch_SecondRateLimitFails(t *testing.T) {
	var hits int
	tool, srv := newTestXSearch(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := tool.SearchPosts(context.Background(), "golang", 20, "Top")
	var upstream schema.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", upstream.Status)
	}
	if hits != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", hits)
	}
}

func TestXSearch_UnresolvableHandle(t *testing.T) {
	tool, srv := newTestXSearch(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"title": "Not Found"}]}`))
	})
	defer srv.Close()

	_, err := tool.SearchPosts(context.Background(), "from:ghost", 10, "Top")
	var upstream schema.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the handle: %v", err)
	}
}

func TestXSearch_MissingToken(t *testing.T) {
	tool := NewXSearchTool("")
	_, err := tool.SearchPosts(context.Background(), "anything", 10, "Top")
	var upstream schema.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestXSearch_ExecuteRequiresQuery(t *testing.T) {
	tool := NewXSearchTool("test-token")
	_, err := tool.Execute(context.Background(), map[string]any{})
	var validation schema.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
