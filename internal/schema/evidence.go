package schema

// SearchResult is one web-search hit. Link is the dedup key.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// PostMetrics carries engagement counts for a social post.
type PostMetrics struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
	Replies  int `json:"replies"`
	Quotes   int `json:"quotes"`
}

// SocialPost is one post from the social timeline or keyword search.
// Reply is true when the post's conversation identifier differs from its own
// identifier. Date is ISO-8601 or empty.
type SocialPost struct {
	Text     string       `json:"text"`
	Date     string       `json:"date"`
	Username string       `json:"username"`
	Name     string       `json:"name"`
	Bio      string       `json:"bio,omitempty"`
	Location string       `json:"location,omitempty"`
	Reply    bool         `json:"reply"`
	Metrics  *PostMetrics `json:"metrics"`
	Link     string       `json:"link"`
}

// PageContent is the extracted text of one fetched page, bounded in length.
type PageContent struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// DedupeSearchResults drops later duplicates of an already-seen link,
// first occurrence wins. Results with an empty link are kept as-is.
// Idempotent: DedupeSearchResults(DedupeSearchResults(l)) == DedupeSearchResults(l).
func DedupeSearchResults(results []SearchResult) []SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Link != "" {
			if seen[r.Link] {
				continue
			}
			seen[r.Link] = true
		}
		out = append(out, r)
	}
	return out
}
