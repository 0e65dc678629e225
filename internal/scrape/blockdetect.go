package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot wall a page hit.
type BlockType string

// Block types reported by DetectBlock.
const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
}

// DetectBlock inspects a response for an interstitial rather than the
// requested page. It returns BlockNone when the page looks real.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp == nil {
		return BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" ||
			strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge")) {
		return BlockCloudflare
	}

	if strings.Contains(lower, "g-recaptcha") || strings.Contains(lower, "h-captcha") ||
		strings.Contains(lower, "captcha-container") {
		return BlockCaptcha
	}

	// Athletics sites built as client-rendered shells serve a tiny document.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return BlockJSShell
		}
	}

	return BlockNone
}

// thinContent reports whether hosted-reader output is too short or looks
// like a challenge page instead of a staff directory.
func thinContent(text string) bool {
	content := strings.TrimSpace(text)
	if len(content) < 100 {
		return true
	}
	if len(content) >= 1000 {
		return false
	}
	lower := strings.ToLower(content)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return strings.Contains(lower, "cloudflare")
}
