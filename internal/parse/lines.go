package parse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/coach-directory/internal/model"
)

var (
	listMarker = regexp.MustCompile(`^\s*(?:[-*•]\s+|\d+[.)]\s+)`)
	namePhrase = regexp.MustCompile(`^[\p{L}][\p{L}.'’\- ]*[\p{L}.]$`)
	partSplit  = regexp.MustCompile(`\s+[-–—|]\s+|[–—|]|,\s*`)
	digitRun   = regexp.MustCompile(`\d`)
)

// lineSeparators are the accepted name/position separators. A plain hyphen
// must be spaced so hyphenated surnames stay intact.
var lineSeparators = []string{" - ", " – ", " — ", "–", "—", ","}

// parseLines reads loose "<name> <sep> <position>" lines. Trailing parts
// that look like contact details are routed to their fields.
func parseLines(text string) []model.RawRecord {
	var out []model.RawRecord
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.ReplaceAll(line, "**", "")
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx, sep := firstSeparator(line)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if !plausibleName(name) {
			continue
		}

		rec := model.RawRecord{Name: name}
		var position []string
		for _, part := range partSplit.Split(line[idx+len(sep):], -1) {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case isSocial(part):
				rec.SocialHandle = part
			case strings.Contains(part, "@"):
				rec.Email = part
			case len(digitRun.FindAllString(part, -1)) >= 7:
				rec.Phone = part
			default:
				position = append(position, part)
			}
		}
		rec.Position = strings.Join(position, ", ")
		out = append(out, rec)
	}
	return out
}

func firstSeparator(line string) (int, string) {
	best, bestSep := -1, ""
	for _, sep := range lineSeparators {
		i := strings.Index(line, sep)
		if i <= 0 {
			continue
		}
		if best < 0 || i < best || (i == best && len(sep) > len(bestSep)) {
			best, bestSep = i, sep
		}
	}
	return best, bestSep
}

// plausibleName accepts two to five words of letters and name punctuation.
func plausibleName(s string) bool {
	if !namePhrase.MatchString(s) {
		return false
	}
	words := strings.FieldsFunc(s, unicode.IsSpace)
	return len(words) >= 2 && len(words) <= 5
}

func isSocial(part string) bool {
	l := strings.ToLower(part)
	if strings.Contains(l, "twitter.com/") || strings.Contains(l, "x.com/") {
		return true
	}
	return strings.HasPrefix(l, "@") && !strings.Contains(l[1:], "@")
}
