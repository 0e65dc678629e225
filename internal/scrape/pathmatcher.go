package scrape

import (
	"net/url"
	"path"
	"strings"
)

// DefaultExcludePatterns skip pages that never hold a full staff listing:
// news stories and single-coach bios.
var DefaultExcludePatterns = []string{
	"/news/*",
	"/article/*",
	"/roster/coaches/*",
}

// PathMatcher filters URLs based on glob-style path patterns. A trailing
// "/*" matches any depth and any mount point, so "/news/*" excludes both
// "/news/2024/10/story" and "/sports/football/news/story".
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher. Nil patterns select
// DefaultExcludePatterns; an empty non-nil slice excludes nothing.
func NewPathMatcher(patterns []string) *PathMatcher {
	if patterns == nil {
		patterns = DefaultExcludePatterns
	}
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			lowered = append(lowered, strings.ToLower(p))
		}
	}
	return &PathMatcher{patterns: lowered}
}

// Patterns returns the configured patterns.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded reports whether a URL matches any pattern. Unparseable URLs are
// excluded.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	p := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(pattern, p) {
			return true
		}
	}
	return false
}

func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return urlPath == prefix || strings.Contains(urlPath, prefix+"/")
	}
	return false
}
