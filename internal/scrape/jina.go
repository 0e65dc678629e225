package scrape

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/pkg/jina"
)

// JinaAdapter wraps a Jina Reader client as a Scraper. Repeated failures
// open a circuit so later URLs skip straight to the next scraper.
type JinaAdapter struct {
	client  jina.Client
	breaker *resilience.CircuitBreaker
}

// NewJinaAdapter creates a JinaAdapter. A zero breaker config uses the
// resilience defaults.
func NewJinaAdapter(client jina.Client, cfg resilience.CircuitBreakerConfig) *JinaAdapter {
	if cfg.Name == "" {
		cfg.Name = "jina"
	}
	return &JinaAdapter{
		client:  client,
		breaker: resilience.NewCircuitBreaker(cfg),
	}
}

// Name implements Scraper.
func (j *JinaAdapter) Name() string { return "jina" }

// Supports returns true unless the circuit is open.
func (j *JinaAdapter) Supports(_ string) bool {
	return j.breaker.State() != resilience.CircuitOpen
}

// Scrape fetches a URL via Jina Reader.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*model.Page, error) {
	return resilience.ExecuteVal(ctx, j.breaker, func(ctx context.Context) (*model.Page, error) {
		resp, err := j.client.Read(ctx, targetURL)
		if err != nil {
			return nil, classifyJina(err)
		}
		if resp.Code != 0 && resp.Code != 200 {
			return nil, resilience.ClassifyStatus("jina", resp.Code, eris.Errorf("jina: upstream status %d", resp.Code))
		}
		if thinContent(resp.Data.Content) {
			return nil, &resilience.PermanentError{Service: "jina", Err: eris.New("jina: response needs fallback")}
		}

		pageURL := resp.Data.URL
		if pageURL == "" {
			pageURL = targetURL
		}
		return &model.Page{
			URL:        pageURL,
			Title:      resp.Data.Title,
			Text:       resp.Data.Content,
			StatusCode: 200,
			Fetcher:    j.Name(),
		}, nil
	})
}

func classifyJina(err error) error {
	var apiErr *jina.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyStatus("jina", apiErr.StatusCode, err)
	}
	return resilience.NewTransientError(eris.Wrap(err, "jina: read"), 0)
}
