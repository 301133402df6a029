package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/schema"
)

const (
	browseUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36"
	maxRedirects    = 5
	retryBaseDelay  = 500 * time.Millisecond
)

// BrowsePageTool fetches a page and extracts its readable text. PDFs are
// delegated to the configured extraction backend; HTML is extracted locally.
type BrowsePageTool struct {
	pdfExtractURL string
	maxChars      int
	maxRetries    int
	retryDelay    time.Duration
	httpClient    *http.Client
}

// NewBrowsePageTool creates a BrowsePageTool from the browse config section.
func NewBrowsePageTool(cfg config.BrowseConfig) *BrowsePageTool {
	maxChars := cfg.MaxPageChars
	if maxChars <= 0 {
		maxChars = 20000
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &BrowsePageTool{
		pdfExtractURL: strings.TrimRight(cfg.PDFExtractURL, "/"),
		maxChars:      maxChars,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    retryBaseDelay,
		httpClient:    client,
	}
}

func (t *BrowsePageTool) Name() string { return string(ToolBrowsePage) }
func (t *BrowsePageTool) Description() string {
	return "Fetch a web page or PDF and extract its readable text content."
}
func (t *BrowsePageTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "URL to fetch"
			},
			"instructions": {
				"type": "string",
				"description": "What to look for on the page"
			}
		},
		"required": ["url"]
	}`)
}

func (t *BrowsePageTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawURL, _ := params["url"].(string)
	if rawURL == "" {
		return "", schema.ValidationError{Reason: "browse_page: url is required"}
	}
	if err := validateURL(rawURL); err != nil {
		return "", schema.ValidationError{Reason: fmt.Sprintf("browse_page: %v", err)}
	}

	page, err := t.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(page)
	if err != nil {
		return "", fmt.Errorf("marshal page content: %w", err)
	}
	return string(payload), nil
}

// Fetch retrieves and extracts one page, dispatching on document type.
func (t *BrowsePageTool) Fetch(ctx context.Context, rawURL string) (*schema.PageContent, error) {
	if t.isPDF(ctx, rawURL) {
		return t.fetchPDF(ctx, rawURL)
	}
	return t.fetchHTML(ctx, rawURL)
}

// isPDF checks the URL suffix first and falls back to a HEAD content-type
// probe. Probe failures mean "treat as HTML"; the GET path will handle any
// real fetch problem.
func (t *BrowsePageTool) isPDF(ctx context.Context, rawURL string) bool {
	if u, err := url.Parse(rawURL); err == nil &&
		strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", browseUserAgent)
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return strings.Contains(resp.Header.Get("Content-Type"), "application/pdf")
}

// fetchPDF delegates text extraction to the configured backend.
func (t *BrowsePageTool) fetchPDF(ctx context.Context, rawURL string) (*schema.PageContent, error) {
	if t.pdfExtractURL == "" {
		return nil, schema.NewUpstreamError("pdf extraction", 0, "extraction backend not configured")
	}

	body, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return nil, fmt.Errorf("marshal extract request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.pdfExtractURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, t.wrapFetchErr("pdf extraction", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extract response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, schema.NewUpstreamError("pdf extraction", resp.StatusCode, string(raw))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, schema.NewUpstreamError("pdf extraction", resp.StatusCode, "unparseable response: "+string(raw))
	}

	return &schema.PageContent{
		Text:      truncateChars(out.Text, t.maxChars),
		SourceURL: rawURL,
	}, nil
}

// fetchHTML GETs the page with bounded retries and extracts readable text.
func (t *BrowsePageTool) fetchHTML(ctx context.Context, rawURL string) (*schema.PageContent, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * t.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		page, retryable, err := t.fetchHTMLOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (t *BrowsePageTool) fetchHTMLOnce(ctx context.Context, rawURL string) (*schema.PageContent, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", browseUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, true, t.wrapFetchErr("page fetch", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read page body: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, true, schema.NewUpstreamError("page fetch", resp.StatusCode, string(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, schema.NewUpstreamError("page fetch", resp.StatusCode, string(raw))
	}

	text := extractReadableText(raw, rawURL)
	return &schema.PageContent{
		Text:      truncateChars(text, t.maxChars),
		SourceURL: rawURL,
	}, false, nil
}

// wrapFetchErr maps a deadline-exceeded transport error to TimeoutError.
func (t *BrowsePageTool) wrapFetchErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "Client.Timeout exceeded") {
		return schema.TimeoutError{Op: op}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validateURL checks that url is http(s) with a valid domain.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only http/https allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing domain in URL")
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTML → text helpers
// ---------------------------------------------------------------------------

var (
	reScript   = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	reStyle    = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	reTags     = regexp.MustCompile(`<[^>]+>`)
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// extractReadableText pulls article text via readability, falling back to a
// plain tag strip when the page has no recognisable article structure.
func extractReadableText(body []byte, rawURL string) string {
	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil && article.Content != "" {
		text := stripHTMLTags(article.Content)
		if article.Title != "" {
			text = article.Title + "\n\n" + text
		}
		return text
	}
	return stripHTMLTags(string(body))
}

// stripHTMLTags removes script/style blocks and all markup, then collapses
// whitespace.
func stripHTMLTags(text string) string {
	text = reScript.ReplaceAllString(text, "")
	text = reStyle.ReplaceAllString(text, "")
	text = reTags.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
