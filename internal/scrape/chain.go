package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
)

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	PathMatcher *PathMatcher
	scrapers    []Scraper
}

// NewChain creates a Chain with the given path matcher and scrapers.
// Scrapers are tried in order; the first successful page is returned.
func NewChain(matcher *PathMatcher, scrapers ...Scraper) *Chain {
	if matcher == nil {
		matcher = NewPathMatcher(nil)
	}
	return &Chain{
		PathMatcher: matcher,
		scrapers:    scrapers,
	}
}

// Names lists the configured scrapers in order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.scrapers))
	for _, s := range c.scrapers {
		names = append(names, s.Name())
	}
	return names
}

// Fetch tries each scraper in order for a single URL. A scraper whose
// credentials are rejected is skipped, and the rejection is reported as a
// permanent failure so a bad fallback key never aborts a whole run.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*model.Page, error) {
	if c.PathMatcher.IsExcluded(targetURL) {
		return nil, &resilience.PermanentError{
			Service: "scrape",
			Err:     eris.Errorf("scrape: url excluded by path matcher: %s", targetURL),
		}
	}

	var lastErr error
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		page, err := s.Scrape(ctx, targetURL)
		if err == nil && page != nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == nil {
			continue
		}
		if resilience.IsCredential(err) {
			zap.L().Error("scrape: scraper rejected credentials",
				zap.String("scraper", s.Name()),
				zap.Error(err),
			)
			// Flatten the chain so callers no longer see a credential error.
			lastErr = &resilience.PermanentError{Service: s.Name(), Err: eris.New(err.Error())}
			continue
		}
		zap.L().Debug("scrape: scraper failed, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, &resilience.PermanentError{
		Service: "scrape",
		Err:     eris.Errorf("scrape: no suitable scraper for url: %s", targetURL),
	}
}
