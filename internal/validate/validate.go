// Package validate decides whether a raw field-set is a genuine coaching
// record and clears malformed contact fields without dropping the record.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/model"
)

const (
	minFieldLen = 2
	maxFieldLen = 100
)

var (
	emailPattern  = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?)*\.[a-z]{2,}$`)
	phonePrefix   = regexp.MustCompile(`(?i)^\s*(?:tel|phone|p)\s*:\s*`)
	phoneCharset  = regexp.MustCompile(`^[\d\s()\-+.x]+$`)
	containsDigit = regexp.MustCompile(`\d`)
)

// Validator applies the role vocabulary and field rules.
type Validator struct {
	coaching []*regexp.Regexp
	excluded []*regexp.Regexp
}

// New compiles a Validator from vocab.
func New(vocab Vocabulary) (*Validator, error) {
	coaching, err := compileTerms(vocab.Coaching)
	if err != nil {
		return nil, err
	}
	if len(coaching) == 0 {
		return nil, eris.New("validate: coaching vocabulary is empty")
	}
	excluded, err := compileTerms(vocab.Excluded)
	if err != nil {
		return nil, err
	}
	return &Validator{coaching: coaching, excluded: excluded}, nil
}

// Default returns a Validator over DefaultVocabulary.
func Default() *Validator {
	v, err := New(DefaultVocabulary())
	if err != nil {
		panic(err)
	}
	return v
}

// IsCoachingPosition reports whether position matches a coaching term and
// no excluded term.
func (v *Validator) IsCoachingPosition(position string) bool {
	for _, re := range v.excluded {
		if re.MatchString(position) {
			return false
		}
	}
	for _, re := range v.coaching {
		if re.MatchString(position) {
			return true
		}
	}
	return false
}

// IsCoachingRecord reports whether r has a name and position within length
// bounds and a coaching position.
func (v *Validator) IsCoachingRecord(r model.RawRecord) bool {
	return withinBounds(r.Name) && withinBounds(r.Position) && v.IsCoachingPosition(r.Position)
}

// Sanitize returns r with invalid email and phone fields cleared, and false
// if the whole record must be dropped.
func (v *Validator) Sanitize(r model.RawRecord) (model.RawRecord, bool) {
	r.Name = strings.TrimSpace(r.Name)
	r.Position = strings.TrimSpace(r.Position)

	if !withinBounds(r.Name) || !withinBounds(r.Position) {
		zap.L().Debug("validate: rejected field length",
			zap.String("name", r.Name),
			zap.String("position", r.Position),
			zap.String("source", r.Source),
		)
		return r, false
	}
	if !v.IsCoachingPosition(r.Position) {
		zap.L().Debug("validate: rejected non-coaching role",
			zap.String("name", r.Name),
			zap.String("position", r.Position),
			zap.String("source", r.Source),
		)
		return r, false
	}

	if !ValidateEmail(r.Email) {
		zap.L().Debug("validate: cleared email", zap.String("name", r.Name), zap.String("email", r.Email))
		r.Email = ""
	}
	if !ValidatePhone(r.Phone) {
		zap.L().Debug("validate: cleared phone", zap.String("name", r.Name), zap.String("phone", r.Phone))
		r.Phone = ""
	}
	return r, true
}

// Filter sanitizes every record and keeps the accepted ones in order.
func (v *Validator) Filter(recs []model.RawRecord) []model.RawRecord {
	out := make([]model.RawRecord, 0, len(recs))
	for _, r := range recs {
		if clean, ok := v.Sanitize(r); ok {
			out = append(out, clean)
		}
	}
	return out
}

// ValidateEmail reports whether value is empty or a single well-formed
// address once a mailto: prefix is removed.
func ValidateEmail(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return true
	}
	value = strings.TrimPrefix(value, "mailto:")
	return emailPattern.MatchString(value)
}

// ValidatePhone reports whether value is empty or a phone made only of
// digits, spaces, parentheses, hyphens, plus signs, periods and x, with at
// least one digit. tel:, phone: and p: prefixes are ignored.
func ValidatePhone(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	value = phonePrefix.ReplaceAllString(value, "")
	return containsDigit.MatchString(value) && phoneCharset.MatchString(value)
}

func withinBounds(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= minFieldLen && n <= maxFieldLen
}
