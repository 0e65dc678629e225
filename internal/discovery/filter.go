package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

// BlockedTerms mark URLs that never hold an official staff directory.
var BlockedTerms = []string{
	"twitter", "facebook", "instagram", "linkedin", "youtube",
	"news.com", "article", "espn.com",
}

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)
	bioPaths   = []*regexp.Regexp{
		regexp.MustCompile(`/coaches/[^/]+/\d+`),
		regexp.MustCompile(`/roster/coaches/[^/]+`),
	}
)

// ExtractURLs pulls http(s) URLs out of free text in order of appearance.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		// Markdown links leave a closing bracket or paren behind.
		m = strings.TrimRight(m, ".,;:)]")
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Filter drops unusable URLs, de-duplicates preserving order, and caps the
// result at limit. A non-positive limit means no cap.
func Filter(urls []string, limit int) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if !Acceptable(u) || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Acceptable reports whether u could be a team staff directory: an absolute
// http(s) URL, not social media or news, not a single-coach bio page.
func Acceptable(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	lower := strings.ToLower(u)
	for _, term := range BlockedTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	for _, re := range bioPaths {
		if re.MatchString(strings.ToLower(parsed.Path)) {
			return false
		}
	}
	return true
}
