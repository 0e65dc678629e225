package validate

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Vocabulary holds the role terms a position is matched against. Terms match
// whole words, case-insensitively, with an optional plural or -ing suffix.
type Vocabulary struct {
	Coaching []string `yaml:"coaching"`
	Excluded []string `yaml:"excluded"`
}

// DefaultVocabulary returns the built-in role terms. "ad" is the athletic
// director abbreviation.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Coaching: []string{
			"coach", "head", "assistant", "associate", "coordinator", "director",
			"manager", "specialist", "analyst", "recruiting",
		},
		Excluded: []string{
			"trainer", "physician", "doctor", "nurse", "medical", "equipment",
			"facility", "facilities", "ad", "sports information", "sports medicine",
			"strength", "conditioning", "nutritionist", "administrative",
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file. A list missing from the file
// keeps its default terms.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, eris.Wrapf(err, "validate: read vocabulary %s", path)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, eris.Wrapf(err, "validate: parse vocabulary %s", path)
	}

	def := DefaultVocabulary()
	if len(v.Coaching) == 0 {
		v.Coaching = def.Coaching
	}
	if len(v.Excluded) == 0 {
		v.Excluded = def.Excluded
	}
	return v, nil
}

func compileTerms(terms []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		words := strings.Fields(regexp.QuoteMeta(strings.ToLower(t)))
		re, err := regexp.Compile(`(?i)\b` + strings.Join(words, `\s+`) + `(?:s|es|ing)?\b`)
		if err != nil {
			return nil, eris.Wrapf(err, "validate: compile term %q", t)
		}
		out = append(out, re)
	}
	return out, nil
}
