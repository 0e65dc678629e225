package scrape

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sells-group/coach-directory/internal/model"
)

// PageCache memoizes fetched pages for the lifetime of one pipeline run.
// Concurrent requests for the same URL share a single fetch. Failures are
// not cached.
type PageCache struct {
	next Fetcher

	mu    sync.RWMutex
	pages map[string]*model.Page
	group singleflight.Group
}

// NewPageCache wraps next with a fresh, empty cache.
func NewPageCache(next Fetcher) *PageCache {
	return &PageCache{
		next:  next,
		pages: make(map[string]*model.Page),
	}
}

// Fetch returns the cached page for url, fetching it on first use. The
// shared fetch is detached from any single caller's cancellation and is
// bounded by the scrapers' own timeouts; each caller stops waiting when its
// own ctx is done.
func (c *PageCache) Fetch(ctx context.Context, url string) (*model.Page, error) {
	if p, ok := c.Get(url); ok {
		return p, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (any, error) {
		if p, ok := c.Get(url); ok {
			return p, nil
		}
		p, err := c.next.Fetch(fetchCtx, url)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.pages[url] = p
		c.mu.Unlock()
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Page), nil
	}
}

// Get returns a page only if it is already cached.
func (c *PageCache) Get(url string) (*model.Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pages[url]
	return p, ok
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
