package parse

import (
	"regexp"
	"strings"

	"github.com/sells-group/coach-directory/internal/model"
)

var separatorLine = regexp.MustCompile(`^\s*-{3,}\s*$`)

// parseStructured reads labeled blocks:
//
//	NAME: Jane Doe
//	POSITION: Head Coach
//	EMAIL: jane@school.edu
//	---
//
// Sections end at a --- line or a blank line. Each line splits on its first
// colon only so values may contain colons. JSON documents are left to the
// json strategy even when their keys are unquoted.
func parseStructured(text string) []model.RawRecord {
	if looksLikeJSON(text) {
		return nil
	}

	var (
		out []model.RawRecord
		cur model.RawRecord
		has bool
	)
	flush := func() {
		if has {
			out = append(out, cur)
		}
		cur = model.RawRecord{}
		has = false
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" || separatorLine.MatchString(line) {
			flush()
			continue
		}
		key, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		value = clean(value)
		switch key {
		case "NAME", "COACH", "COACH NAME", "FULL NAME":
			// A second NAME inside one section starts a new coach.
			if cur.Name != "" {
				flush()
			}
			cur.Name = value
		case "POSITION", "TITLE", "ROLE":
			cur.Position = value
		case "EMAIL", "E-MAIL":
			cur.Email = value
		case "PHONE", "TELEPHONE", "PHONE NUMBER":
			cur.Phone = value
		case "TWITTER", "X", "TWITTER/X", "SOCIAL", "SOCIAL HANDLE":
			cur.SocialHandle = value
		default:
			continue
		}
		has = true
	}
	flush()
	return out
}

// splitLabel splits "KEY: value" on the first colon. Markdown bullets and
// bold markers around the key are ignored.
func splitLabel(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	key = strings.TrimLeft(key, "-*•# ")
	key = strings.Trim(key, "*_ ")
	if key == "" || len(key) > 20 {
		return "", "", false
	}
	value := strings.Trim(line[idx+1:], " \t*_")
	value = strings.TrimSpace(strings.TrimSuffix(value, ","))
	value = strings.Trim(value, `"'`)
	return strings.ToUpper(key), value, true
}

func looksLikeJSON(text string) bool {
	body := stripFences(text)
	return strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[")
}
