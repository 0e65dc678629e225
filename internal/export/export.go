// Package export writes coach records as CSV.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/model"
)

// Header is the CSV column order.
var Header = []string{"coach_name", "coach_position", "coach_email", "coach_phone", "coach_twitter", "source_url"}

const maxSlugLen = 50

var (
	slugDrop   = regexp.MustCompile(`[^a-z0-9 _-]`)
	slugSep    = regexp.MustCompile(`[ \-]+`)
	slugRepeat = regexp.MustCompile(`_+`)
)

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, recs []model.CoachRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range recs {
		row := []string{r.Name, r.Position, r.Email, r.Phone, r.SocialHandle, r.SourceReference}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WriteFile writes recs to path, replacing any existing file.
func WriteFile(path string, recs []model.CoachRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// Filename returns "<school>_<sport>_coaches.csv" built from slugs.
func Filename(school, sport string) string {
	return Slug(school) + "_" + Slug(sport) + "_coaches.csv"
}

// Slug lowercases s, keeps only [a-z0-9 _-], turns spaces and hyphens into
// underscores, and caps the result at 50 characters. Empty input gives
// "unknown".
func Slug(s string) string {
	s = slugDrop.ReplaceAllString(strings.ToLower(s), "")
	s = slugSep.ReplaceAllString(s, "_")
	s = slugRepeat.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "_")
	}
	if s == "" {
		return "unknown"
	}
	return s
}
