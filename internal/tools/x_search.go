package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/personaforge/personaforge/internal/schema"
)

const (
	xAPIBase   = "https://api.x.com/2"
	maxXPosts  = 100
	retryAfter = 2 * time.Second
)

var (
	reFromClause = regexp.MustCompile(`from:(\w{1,15})`)
	// retweetExclusion is the only recognised exclusion token. Replies are
	// always included; there is no reply-exclusion support.
	retweetExclusion = "-is:retweet"
)

const xUserFields = "description,location,name,username"
const xTweetFields = "created_at,conversation_id,public_metrics,text"

// XSearchTool fetches posts from the X API v2, either a user timeline (when
// the query carries a from: clause) or a recent keyword search.
type XSearchTool struct {
	bearerToken string
	apiBase     string
	backoff     time.Duration
	httpClient  *http.Client
}

// NewXSearchTool creates an XSearchTool. An empty bearer token surfaces as
// an UpstreamError at invocation time.
func NewXSearchTool(bearerToken string) *XSearchTool {
	return &XSearchTool{
		bearerToken: bearerToken,
		apiBase:     xAPIBase,
		backoff:     retryAfter,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *XSearchTool) Name() string { return string(ToolXKeywordSearch) }
func (t *XSearchTool) Description() string {
	return "Search X (Twitter) posts. Use from:<handle> in the query to fetch a user's timeline; add -is:retweet to exclude retweets."
}
func (t *XSearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Keyword query, optionally with from:<handle> and -is:retweet operators"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum posts to return (1-100)",
				"minimum": 1,
				"maximum": 100
			},
			"mode": {
				"type": "string",
				"enum": ["Top", "Latest"],
				"description": "Ranking for keyword search; ignored for timeline fetches"
			}
		},
		"required": ["query"]
	}`)
}

func (t *XSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return "", schema.ValidationError{Reason: "x_keyword_search: query is required"}
	}
	limit := intArg(params, "limit", 50, maxXPosts)
	mode, _ := params["mode"].(string)
	if mode != "Top" && mode != "Latest" {
		mode = "Top"
	}

	posts, err := t.SearchPosts(ctx, query, limit, mode)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(posts)
	if err != nil {
		return "", fmt.Errorf("marshal posts: %w", err)
	}
	return string(payload), nil
}

// SearchPosts runs the timeline-or-search dispatch. Also used by the seeder.
func (t *XSearchTool) SearchPosts(ctx context.Context, query string, limit int, mode string) ([]schema.SocialPost, error) {
	if t.bearerToken == "" {
		return nil, schema.NewUpstreamError("x api", 0, "bearer token not configured")
	}
	if limit < 1 || limit > maxXPosts {
		limit = maxXPosts
	}

	if m := reFromClause.FindStringSubmatch(query); m != nil {
		return t.userTimeline(ctx, m[1], limit, strings.Contains(query, retweetExclusion))
	}
	return t.recentSearch(ctx, query, limit, mode)
}

// userTimeline resolves handle to a user id, then fetches that user's
// reverse-chronological timeline. Ranking mode does not apply here.
func (t *XSearchTool) userTimeline(ctx context.Context, handle string, limit int, excludeRetweets bool) ([]schema.SocialPost, error) {
	user, err := t.lookupUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("max_results", fmt.Sprintf("%d", clampXPageSize(limit, 5)))
	q.Set("tweet.fields", xTweetFields)
	if excludeRetweets {
		q.Set("exclude", "retweets")
	}

	raw, err := t.get(ctx, fmt.Sprintf("%s/users/%s/tweets", t.apiBase, user.ID), q)
	if err != nil {
		return nil, err
	}

	var body struct {
		Data []xTweet `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, schema.NewUpstreamError("x api", 0, "unparseable timeline response: "+string(raw))
	}

	posts := make([]schema.SocialPost, 0, len(body.Data))
	for i, tw := range body.Data {
		if i >= limit {
			break
		}
		posts = append(posts, tw.toPost(*user))
	}
	return posts, nil
}

// recentSearch runs the general recency/relevance keyword search.
func (t *XSearchTool) recentSearch(ctx context.Context, query string, limit int, mode string) ([]schema.SocialPost, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", fmt.Sprintf("%d", clampXPageSize(limit, 10)))
	q.Set("tweet.fields", xTweetFields)
	q.Set("expansions", "author_id")
	q.Set("user.fields", xUserFields)
	if mode == "Latest" {
		q.Set("sort_order", "recency")
	} else {
		q.Set("sort_order", "relevancy")
	}

	raw, err := t.get(ctx, t.apiBase+"/tweets/search/recent", q)
	if err != nil {
		return nil, err
	}

	var body struct {
		Data     []xTweet `json:"data"`
		Includes struct {
			Users []xUser `json:"users"`
		} `json:"includes"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, schema.NewUpstreamError("x api", 0, "unparseable search response: "+string(raw))
	}

	users := make(map[string]xUser, len(body.Includes.Users))
	for _, u := range body.Includes.Users {
		users[u.ID] = u
	}

	posts := make([]schema.SocialPost, 0, len(body.Data))
	for i, tw := range body.Data {
		if i >= limit {
			break
		}
		posts = append(posts, tw.toPost(users[tw.AuthorID]))
	}
	return posts, nil
}

func (t *XSearchTool) lookupUser(ctx context.Context, handle string) (*xUser, error) {
	q := url.Values{}
	q.Set("user.fields", xUserFields)

	raw, err := t.get(ctx, fmt.Sprintf("%s/users/by/username/%s", t.apiBase, handle), q)
	if err != nil {
		return nil, err
	}

	var body struct {
		Data *xUser `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Data == nil || body.Data.ID == "" {
		return nil, schema.NewUpstreamError("x api", 0, fmt.Sprintf("could not resolve handle %q: %s", handle, raw))
	}
	return body.Data, nil
}

// get performs one authenticated GET. A 429 is retried exactly once after a
// fixed backoff; a second 429 propagates as an UpstreamError.
func (t *XSearchTool) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	raw, status, err := t.doOnce(ctx, endpoint, q)
	if err != nil {
		return nil, err
	}
	if status == http.StatusTooManyRequests {
		select {
		case <-time.After(t.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		raw, status, err = t.doOnce(ctx, endpoint, q)
		if err != nil {
			return nil, err
		}
	}
	if status < 200 || status >= 300 {
		return nil, schema.NewUpstreamError("x api", status, string(raw))
	}
	return raw, nil
}

func (t *XSearchTool) doOnce(ctx context.Context, endpoint string, q url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build x request: %w", err)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+t.bearerToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("x api request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read x response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// clampXPageSize keeps max_results inside the endpoint's accepted range.
func clampXPageSize(limit, min int) int {
	if limit < min {
		return min
	}
	if limit > maxXPosts {
		return maxXPosts
	}
	return limit
}

// xUser is the subset of the X user object we consume.
type xUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// xTweet is the subset of the X tweet object we consume.
type xTweet struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	CreatedAt      string `json:"created_at"`
	ConversationID string `json:"conversation_id"`
	AuthorID       string `json:"author_id"`
	PublicMetrics  *struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
}

func (tw xTweet) toPost(author xUser) schema.SocialPost {
	post := schema.SocialPost{
		Text:     tw.Text,
		Date:     tw.CreatedAt,
		Username: author.Username,
		Name:     author.Name,
		Bio:      author.Description,
		Location: author.Location,
		Reply:    tw.ConversationID != "" && tw.ConversationID != tw.ID,
	}
	if author.Username != "" {
		post.Link = fmt.Sprintf("https://x.com/%s/status/%s", author.Username, tw.ID)
	}
	if pm := tw.PublicMetrics; pm != nil {
		post.Metrics = &schema.PostMetrics{
			Likes:    pm.LikeCount,
			Retweets: pm.RetweetCount,
			Replies:  pm.ReplyCount,
			Quotes:   pm.QuoteCount,
		}
	}
	return post
}
