// Package scrape resolves staff directory URLs to page content through a
// chain of fetchers: plain HTTP first, then hosted readers.
package scrape

import (
	"context"

	"github.com/sells-group/coach-directory/internal/model"
)

// Scraper fetches a single URL with one backend.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*model.Page, error)
	Name() string
	Supports(url string) bool
}

// Fetcher resolves a URL to a page. Chain and PageCache implement it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
}
