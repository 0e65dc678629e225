// Package discovery finds candidate staff directory URLs for a school and
// sport.
package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/llm"
	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/pkg/jina"
)

// DefaultMaxCandidates caps the URLs handed to the collector.
const DefaultMaxCandidates = 5

// Config controls discovery.
type Config struct {
	MaxCandidates int
	// Retry governs rate-limited and transient search failures. The zero
	// value uses resilience defaults.
	Retry resilience.RetryConfig
}

// Discoverer asks a search-backed generator for directory pages and falls
// back to Jina Search when the answer holds no usable URLs.
type Discoverer struct {
	searcher llm.Searcher
	jina     jina.Client
	cfg      Config
}

// New creates a Discoverer. Either collaborator may be nil, but not both.
func New(searcher llm.Searcher, jinaClient jina.Client, cfg Config) (*Discoverer, error) {
	if searcher == nil && jinaClient == nil {
		return nil, eris.New("discovery: no search backend configured")
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &Discoverer{searcher: searcher, jina: jinaClient, cfg: cfg}, nil
}

// Discover returns up to MaxCandidates directory URLs, most relevant first.
// Only credential failures are returned as errors; other backend failures
// are logged and yield fewer candidates.
func (d *Discoverer) Discover(ctx context.Context, q model.Query) ([]string, error) {
	log := zap.L().With(zap.String("school", q.School), zap.String("sport", q.Sport))

	var urls []string
	if d.searcher != nil {
		prompt := llm.DiscoveryPrompt(q)
		res, err := resilience.DoVal(ctx, d.retry("web_search"), func(ctx context.Context) (*llm.SearchResult, error) {
			return d.searcher.Search(ctx, prompt)
		})
		switch {
		case err != nil && resilience.IsCredential(err):
			return nil, err
		case err != nil:
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "discovery: search")
			}
			log.Warn("discovery: web search failed", zap.Error(err))
		default:
			urls = Filter(res.Citations, d.cfg.MaxCandidates)
			if len(urls) == 0 {
				urls = Filter(ExtractURLs(res.Text), d.cfg.MaxCandidates)
			}
			log.Debug("discovery: web search answered",
				zap.Int("citations", len(res.Citations)),
				zap.Int("candidates", len(urls)),
			)
		}
	}

	if len(urls) == 0 && d.jina != nil {
		found, err := resilience.DoVal(ctx, d.retry("jina_search"), func(ctx context.Context) ([]string, error) {
			return d.searchJina(ctx, q)
		})
		if err != nil {
			if resilience.IsCredential(err) {
				return nil, err
			}
			log.Warn("discovery: jina search failed", zap.Error(err))
		}
		urls = Filter(found, d.cfg.MaxCandidates)
	}

	log.Info("discovery: candidates found", zap.Int("count", len(urls)), zap.Strings("urls", urls))
	return urls, nil
}

func (d *Discoverer) retry(op string) resilience.RetryConfig {
	cfg := d.cfg.Retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("discovery", op)
	}
	return cfg
}

func (d *Discoverer) searchJina(ctx context.Context, q model.Query) ([]string, error) {
	query := fmt.Sprintf("%s %s coaching staff directory", q.School, q.Sport)
	resp, err := d.jina.Search(ctx, query)
	if err != nil {
		var apiErr *jina.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.ClassifyStatus("jina", apiErr.StatusCode, err)
		}
		return nil, eris.Wrap(err, "discovery: jina search")
	}
	out := make([]string, 0, len(resp.Data))
	for _, r := range resp.Data {
		out = append(out, r.URL)
	}
	return out, nil
}
