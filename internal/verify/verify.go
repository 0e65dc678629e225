// Package verify clears contact fields that cannot be found on the page a
// record was extracted from. Records themselves are never dropped.
package verify

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/scrape"
)

// DefaultConcurrency bounds page loads during verification.
const DefaultConcurrency = 3

var handleInURL = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:twitter|x)\.com/@?([a-z0-9_]+)`)

// Verifier checks contact fields against source pages.
type Verifier struct {
	fetcher     scrape.Fetcher
	concurrency int
}

// New creates a Verifier. Pass the run's PageCache so pages already fetched
// during extraction are not fetched again.
func New(fetcher scrape.Fetcher, concurrency int) *Verifier {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Verifier{fetcher: fetcher, concurrency: concurrency}
}

// Evidence is what a source page shows.
type Evidence struct {
	text    string
	emails  map[string]bool
	handles map[string]bool
}

// Verify returns a copy of recs with unverifiable email and social fields
// cleared. Pages that cannot be loaded leave their records untouched.
func (v *Verifier) Verify(ctx context.Context, recs []model.RawRecord) ([]model.RawRecord, error) {
	sources := make([]string, 0)
	index := map[string]int{}
	for _, r := range recs {
		if r.Source == "" || (r.Email == "" && r.SocialHandle == "") {
			continue
		}
		if _, ok := index[r.Source]; !ok {
			index[r.Source] = len(sources)
			sources = append(sources, r.Source)
		}
	}

	evidence := make([]*Evidence, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			page, err := v.fetcher.Fetch(gctx, src)
			if err != nil {
				zap.L().Debug("verify: source page unavailable", zap.String("url", src), zap.Error(err))
				return nil
			}
			evidence[i] = Collect(page)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]model.RawRecord, len(recs))
	cleared := 0
	for i, r := range recs {
		out[i] = r
		j, ok := index[r.Source]
		if !ok || evidence[j] == nil {
			continue
		}
		ev := evidence[j]
		if r.Email != "" && !ev.HasEmail(r.Email) {
			out[i].Email = ""
			cleared++
		}
		if r.SocialHandle != "" && !ev.HasHandle(r.SocialHandle) {
			out[i].SocialHandle = ""
			cleared++
		}
	}

	zap.L().Info("verify: contacts checked",
		zap.Int("records", len(recs)),
		zap.Int("pages", len(sources)),
		zap.Int("fields_cleared", cleared),
	)
	return out, nil
}

// Collect gathers the emails, social handles, and lowercase text of a page.
func Collect(page *model.Page) *Evidence {
	ev := &Evidence{
		text:    strings.ToLower(page.Text),
		emails:  map[string]bool{},
		handles: map[string]bool{},
	}
	if page.HTML == "" {
		for _, m := range handleInURL.FindAllStringSubmatch(page.Text, -1) {
			ev.handles[strings.ToLower(m[1])] = true
		}
		return ev
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return ev
	}
	if ev.text == "" {
		ev.text = strings.ToLower(doc.Text())
	} else {
		ev.text += "\n" + strings.ToLower(doc.Text())
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if addr, ok := cutPrefixFold(href, "mailto:"); ok {
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			ev.emails[strings.ToLower(strings.TrimSpace(addr))] = true
			return
		}
		if m := handleInURL.FindStringSubmatch(href); m != nil {
			ev.handles[strings.ToLower(m[1])] = true
		}
	})
	return ev
}

// HasEmail reports whether the address appears in the page text or a
// mailto link, ignoring case.
func (e *Evidence) HasEmail(email string) bool {
	addr := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(email)), "mailto:")
	if addr == "" {
		return false
	}
	return e.emails[addr] || strings.Contains(e.text, addr)
}

// HasHandle reports whether the page links to the handle's profile.
func (e *Evidence) HasHandle(social string) bool {
	h := handleOf(social)
	return h != "" && e.handles[h]
}

func handleOf(social string) string {
	if m := handleInURL.FindStringSubmatch(social); m != nil {
		return strings.ToLower(m[1])
	}
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(social), "@"))
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}
