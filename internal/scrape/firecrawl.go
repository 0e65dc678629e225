package scrape

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as the last-resort Scraper. It
// asks for both markup and markdown so the html parse strategy still has
// tables to work with.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

// Name implements Scraper.
func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Supports implements Scraper.
func (f *FirecrawlAdapter) Supports(_ string) bool { return true }

// Scrape fetches a single URL via Firecrawl's scrape API.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*model.Page, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             targetURL,
		Formats:         []string{"html", "markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		var apiErr *firecrawl.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.ClassifyStatus("firecrawl", apiErr.StatusCode, err)
		}
		return nil, resilience.NewTransientError(eris.Wrap(err, "firecrawl: scrape"), 0)
	}
	if !resp.Success {
		return nil, &resilience.PermanentError{Service: "firecrawl", Err: eris.New("firecrawl: scrape not successful")}
	}
	if thinContent(resp.Data.Markdown) && len(resp.Data.HTML) < 100 {
		return nil, &resilience.PermanentError{Service: "firecrawl", Err: eris.New("firecrawl: empty page")}
	}

	pageURL := resp.Data.Metadata.SourceURL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &model.Page{
		URL:        pageURL,
		Title:      resp.Data.Metadata.Title,
		HTML:       resp.Data.HTML,
		Text:       resp.Data.Markdown,
		StatusCode: resp.Data.Metadata.StatusCode,
		Fetcher:    f.Name(),
	}, nil
}
