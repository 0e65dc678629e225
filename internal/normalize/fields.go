package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	mcParticle     = regexp.MustCompile(`\bMc([a-z])`)
	macParticle    = regexp.MustCompile(`\bMac([a-z])`)
	macInInput     = regexp.MustCompile(`\b[Mm]ac[A-Z]`)
	oParticle      = regexp.MustCompile(`\bO'([a-z])`)
	spacedParticle = regexp.MustCompile(`\b(De|Van) ([a-z])`)

	leadingQualifier = regexp.MustCompile(`(?i)^(assistant|associate|head|volunteer|graduate)\s+`)
	trailingRole     = regexp.MustCompile(`(?i)\s+(coach|manager|coordinator|director)$`)
	abbreviations    = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?i)\bAsst\b\.?\s*`), "Assistant "},
		{regexp.MustCompile(`(?i)\bAssoc\b\.?\s*`), "Associate "},
		{regexp.MustCompile(`(?i)\bHc\b\.?\s*`), "Head Coach "},
	}

	phoneLabel      = regexp.MustCompile(`(?i)^(?:tel|phone|p)\s*:\s*`)
	phoneDisallowed = regexp.MustCompile(`[^\d\s()\-+.x]`)

	socialURL     = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:twitter|x)\.com/@?([a-z0-9_]+)`)
	bareHandle    = regexp.MustCompile(`^@?([A-Za-z0-9_]+)$`)
	reservedPaths = map[string]bool{"intent": true, "share": true, "home": true, "search": true, "i": true, "hashtag": true}
)

const canonicalSocialPrefix = "https://twitter.com/"

// Name title-cases a person's name and re-capitalizes the letter after the
// Mc, O', De and Van particles. Mac is only fixed when the input itself
// capitalized the following letter, so "Mack" stays "Mack".
func Name(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	keepMac := !isAllUpper(s) && macInInput.MatchString(s)

	out := cases.Title(language.English).String(s)
	out = mcParticle.ReplaceAllStringFunc(out, upperLast)
	out = oParticle.ReplaceAllStringFunc(out, upperLast)
	out = spacedParticle.ReplaceAllStringFunc(out, upperLast)
	if keepMac {
		out = macParticle.ReplaceAllStringFunc(out, upperLast)
	}
	return out
}

// Position canonicalizes a role title: qualifier and trailing role nouns
// are collapsed, every word is capitalized and Asst, Assoc and Hc are
// expanded.
func Position(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = leadingQualifier.ReplaceAllString(s, "$1 ")
	s = trailingRole.ReplaceAllString(s, " $1")

	shouting := isAllUpper(s)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalizeWord(w, shouting)
	}
	s = strings.Join(words, " ")

	for _, a := range abbreviations {
		s = a.re.ReplaceAllString(s, a.repl)
	}
	return strings.Join(strings.Fields(s), " ")
}

// Email lowercases, strips mailto: and keeps the value only if it has an @
// followed by a dot.
func Email(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "mailto:")
	at := strings.IndexByte(s, '@')
	if at < 0 || !strings.Contains(s[at+1:], ".") {
		return ""
	}
	return s
}

// Phone strips labels and any character outside digits, spaces,
// parentheses, hyphens, plus, period and x, then collapses whitespace.
// A value with no digits normalizes to "".
func Phone(s string) string {
	s = phoneLabel.ReplaceAllString(strings.TrimSpace(s), "")
	s = phoneDisallowed.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if strings.IndexFunc(s, unicode.IsDigit) < 0 {
		return ""
	}
	return s
}

// Social returns the canonical https://twitter.com/<handle> form of a
// twitter.com or x.com URL, an @mention or a bare handle. Anything else
// becomes "".
func Social(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var handle string
	if m := socialURL.FindStringSubmatch(s); m != nil {
		handle = m[1]
		if reservedPaths[strings.ToLower(handle)] {
			return ""
		}
	} else if m := bareHandle.FindStringSubmatch(s); m != nil {
		handle = m[1]
	}
	handle = strings.ToLower(handle)
	if n := len(handle); n < 3 || n > 15 {
		return ""
	}
	return canonicalSocialPrefix + handle
}

// capitalizeWord upper-cases the first letter of each hyphen, slash or
// period separated part and lower-cases the rest. Short acronyms are kept unless
// the whole title was shouted.
func capitalizeWord(w string, shouting bool) string {
	var b strings.Builder
	start := 0
	for i, r := range w {
		if r == '-' || r == '/' || r == '.' {
			b.WriteString(capitalizePart(w[start:i], shouting))
			b.WriteRune(r)
			start = i + 1
		}
	}
	b.WriteString(capitalizePart(w[start:], shouting))
	return b.String()
}

func capitalizePart(p string, shouting bool) string {
	if p == "" {
		return ""
	}
	if !shouting && isAcronym(p) {
		return p
	}
	r, size := utf8.DecodeRuneInString(p)
	return string(unicode.ToUpper(r)) + strings.ToLower(p[size:])
}

func isAcronym(p string) bool {
	trimmed := strings.Trim(p, "().,&")
	n := utf8.RuneCountInString(trimmed)
	if n < 2 || n > 4 {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func upperLast(m string) string {
	r, size := utf8.DecodeLastRuneInString(m)
	return m[:len(m)-size] + string(unicode.ToUpper(r))
}
