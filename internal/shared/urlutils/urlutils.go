// Package urlutils derives social identifiers from profile URLs.
package urlutils

import (
	"net/url"
	"regexp"
	"strings"
)

var reHandle = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// xHosts are the hosts accepted as X (Twitter) profile URLs.
var xHosts = map[string]bool{
	"x.com":              true,
	"www.x.com":          true,
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
}

// ExtractXUsername returns the handle from an X profile URL, or "" when the
// URL is malformed, on a foreign host, or has no valid handle segment.
func ExtractXUsername(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !xHosts[strings.ToLower(u.Host)] {
		return ""
	}
	segs := pathSegments(u)
	if len(segs) == 0 {
		return ""
	}
	handle := strings.TrimPrefix(segs[0], "@")
	if !reHandle.MatchString(handle) {
		return ""
	}
	return handle
}

// ExtractLinkedInSlug returns the profile slug from a LinkedIn URL: the path
// segment immediately following an "/in/" component. Returns "" for
// malformed URLs, foreign hosts, or URLs without an /in/<slug> path.
func ExtractLinkedInSlug(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return ""
	}
	segs := pathSegments(u)
	for i, seg := range segs {
		if seg == "in" && i+1 < len(segs) && segs[i+1] != "" {
			return segs[i+1]
		}
	}
	return ""
}

func pathSegments(u *url.URL) []string {
	var segs []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
