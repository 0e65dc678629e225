package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
)

const staffURL = "https://gostate.example.edu/sports/football/coaches"

func TestChain_Fetch_FirstSuccess(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, page: &model.Page{URL: staffURL, Fetcher: "primary"}}
	s2 := &mockScraper{name: "fallback", supports: true}

	page, err := NewChain(nil, s1, s2).Fetch(context.Background(), staffURL)

	require.NoError(t, err)
	assert.Equal(t, "primary", page.Fetcher)
	assert.Equal(t, int32(0), s2.calls.Load())
}

func TestChain_Fetch_FallbackOnError(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, err: errors.New("blocked")}
	s2 := &mockScraper{name: "fallback", supports: true, page: &model.Page{URL: staffURL, Fetcher: "fallback"}}

	page, err := NewChain(nil, s1, s2).Fetch(context.Background(), staffURL)

	require.NoError(t, err)
	assert.Equal(t, "fallback", page.Fetcher)
}

func TestChain_Fetch_SkipsUnsupported(t *testing.T) {
	s1 := &mockScraper{name: "open-circuit", supports: false}
	s2 := &mockScraper{name: "fallback", supports: true, page: &model.Page{URL: staffURL}}

	_, err := NewChain(nil, s1, s2).Fetch(context.Background(), staffURL)

	require.NoError(t, err)
	assert.Equal(t, int32(0), s1.calls.Load())
}

func TestChain_Fetch_AllFail(t *testing.T) {
	s1 := &mockScraper{name: "a", supports: true, err: errors.New("first")}
	s2 := &mockScraper{name: "b", supports: true, err: resilience.NewTransientError(errors.New("second"), 503)}

	_, err := NewChain(nil, s1, s2).Fetch(context.Background(), staffURL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all scrapers failed")
	assert.True(t, resilience.IsTransient(err), "last error classification is kept")
}

func TestChain_Fetch_CredentialDemoted(t *testing.T) {
	s1 := &mockScraper{name: "jina", supports: true, err: &resilience.CredentialError{Service: "jina", StatusCode: 401, Err: errors.New("bad key")}}

	_, err := NewChain(nil, s1).Fetch(context.Background(), staffURL)

	require.Error(t, err)
	assert.False(t, resilience.IsCredential(err))
	assert.Equal(t, resilience.CategoryPermanent, resilience.ClassifyError(err))
}

func TestChain_Fetch_Excluded(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, page: &model.Page{}}

	_, err := NewChain(nil, s1).Fetch(context.Background(), "https://gostate.example.edu/sports/football/roster/coaches/jane-doe/42")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "excluded")
	assert.Equal(t, int32(0), s1.calls.Load())
}

func TestChain_Fetch_NoScrapers(t *testing.T) {
	_, err := NewChain(nil).Fetch(context.Background(), staffURL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suitable scraper")
}

func TestChain_Fetch_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s1 := &mockScraper{name: "a", supports: true, err: context.Canceled}
	s2 := &mockScraper{name: "b", supports: true, page: &model.Page{}}

	_, err := NewChain(nil, s1, s2).Fetch(ctx, staffURL)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), s2.calls.Load())
}

func TestChain_Names(t *testing.T) {
	c := NewChain(nil, &mockScraper{name: "local_http"}, &mockScraper{name: "jina"})
	assert.Equal(t, []string{"local_http", "jina"}, c.Names())
}
