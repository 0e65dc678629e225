package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
)

// Local scraper defaults.
const (
	DefaultMaxBodyBytes = 2 << 20
	defaultUserAgent    = "Mozilla/5.0 (compatible; CoachDirectoryBot/1.0)"
)

// LocalScraper fetches HTML via net/http, detects blocks, and extracts
// readable text with goquery. Requests to one host are rate limited.
// Blocked pages fall through to the hosted readers.
type LocalScraper struct {
	client       *http.Client
	maxBodyBytes int64
	rps          float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// LocalOption configures a LocalScraper.
type LocalOption func(*LocalScraper)

// WithLocalHTTPClient replaces the HTTP client.
func WithLocalHTTPClient(hc *http.Client) LocalOption {
	return func(l *LocalScraper) { l.client = hc }
}

// WithTimeout sets the whole-request timeout.
func WithTimeout(d time.Duration) LocalOption {
	return func(l *LocalScraper) {
		if d > 0 {
			l.client.Timeout = d
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) LocalOption {
	return func(l *LocalScraper) {
		if n > 0 {
			l.maxBodyBytes = n
		}
	}
}

// WithHostRate limits requests per second to any single host. Zero or a
// negative value disables limiting.
func WithHostRate(rps float64) LocalOption {
	return func(l *LocalScraper) { l.rps = rps }
}

// NewLocalScraper creates a LocalScraper with sensible defaults.
func NewLocalScraper(opts ...LocalOption) *LocalScraper {
	l := &LocalScraper{
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxBodyBytes: DefaultMaxBodyBytes,
		limiters:     make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name implements Scraper.
func (l *LocalScraper) Name() string { return "local_http" }

// Supports implements Scraper.
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, rejects interstitials, and extracts title and text.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*model.Page, error) {
	if err := l.wait(ctx, targetURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &resilience.PermanentError{Service: "local_http", Err: eris.Wrap(err, "local_http: create request")}
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "local_http: fetch"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBodyBytes))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "local_http: read body"), 0)
	}

	if block := DetectBlock(resp, body); block != BlockNone {
		return nil, &resilience.PermanentError{
			Service:    "local_http",
			StatusCode: resp.StatusCode,
			Err:        eris.Errorf("local_http: blocked (%s)", block),
		}
	}

	if resp.StatusCode >= 400 {
		// A 401/403 from a school site is a wall, not our credential.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &resilience.PermanentError{
				Service:    "local_http",
				StatusCode: resp.StatusCode,
				Err:        eris.Errorf("local_http: status %d", resp.StatusCode),
			}
		}
		return nil, resilience.ClassifyStatus("local_http", resp.StatusCode, eris.Errorf("local_http: status %d", resp.StatusCode))
	}

	if len(bytes.TrimSpace(body)) < 100 {
		return nil, &resilience.PermanentError{Service: "local_http", Err: eris.New("local_http: empty page")}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &resilience.PermanentError{Service: "local_http", Err: eris.Wrap(err, "local_http: parse html")}
	}

	return &model.Page{
		URL:        targetURL,
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		HTML:       string(body),
		Text:       ReadableText(doc),
		StatusCode: resp.StatusCode,
		Fetcher:    l.Name(),
	}, nil
}

func (l *LocalScraper) wait(ctx context.Context, targetURL string) error {
	if l.rps <= 0 {
		return nil
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return &resilience.PermanentError{Service: "local_http", Err: eris.Wrap(err, "local_http: parse url")}
	}
	host := strings.ToLower(u.Hostname())

	l.mu.Lock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[host] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "dt": true, "dd": true,
}

// ReadableText drops chrome (scripts, styles, navigation, footers) and
// returns the document text one block per line.
func ReadableText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, footer, iframe, svg").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var b strings.Builder
	writeText(root, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); {
		case name == "#text":
			b.WriteString(c.Text())
		case name == "br":
			b.WriteByte('\n')
		case name == "td" || name == "th":
			writeText(c, b)
			b.WriteByte(' ')
		case blockTags[name]:
			b.WriteByte('\n')
			writeText(c, b)
			b.WriteByte('\n')
		case strings.HasPrefix(name, "#"):
			// comments and doctypes
		default:
			writeText(c, b)
		}
	})
}
