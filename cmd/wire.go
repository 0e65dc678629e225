package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/config"
	"github.com/sells-group/coach-directory/internal/discovery"
	"github.com/sells-group/coach-directory/internal/extract"
	"github.com/sells-group/coach-directory/internal/llm"
	"github.com/sells-group/coach-directory/internal/parse"
	"github.com/sells-group/coach-directory/internal/pipeline"
	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/internal/scrape"
	"github.com/sells-group/coach-directory/internal/store"
	"github.com/sells-group/coach-directory/internal/validate"
	anthropicpkg "github.com/sells-group/coach-directory/pkg/anthropic"
	"github.com/sells-group/coach-directory/pkg/firecrawl"
	"github.com/sells-group/coach-directory/pkg/jina"
	"github.com/sells-group/coach-directory/pkg/perplexity"
)

func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		dsn := c.Store.DatabaseURL
		if dsn == "" {
			dsn = "coaches.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func httpClient(c *config.Config) *http.Client {
	return &http.Client{Timeout: time.Duration(c.Scrape.TimeoutSecs) * time.Second}
}

func jinaClient(c *config.Config) jina.Client {
	return jina.NewClient(c.Jina.Key,
		jina.WithBaseURL(c.Jina.BaseURL),
		jina.WithSearchBaseURL(c.Jina.SearchBaseURL),
		jina.WithHTTPClient(httpClient(c)),
	)
}

func perplexityGenerator(c *config.Config) *llm.PerplexityGenerator {
	client := perplexity.NewClient(c.Perplexity.Key,
		perplexity.WithBaseURL(c.Perplexity.BaseURL),
		perplexity.WithModel(c.Perplexity.Model),
		perplexity.WithHTTPClient(httpClient(c)),
	)
	return llm.NewPerplexityGenerator(client, c.Perplexity.Model)
}

// buildFetcher assembles the scraper chain: direct HTTP first, then Jina
// Reader, then Firecrawl when a key is configured.
func buildFetcher(c *config.Config) scrape.Fetcher {
	circuit := func(name string) resilience.CircuitBreakerConfig {
		return resilience.FromCircuitConfig(name, c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs)
	}

	scrapers := []scrape.Scraper{
		scrape.NewLocalScraper(
			scrape.WithTimeout(time.Duration(c.Scrape.TimeoutSecs)*time.Second),
			scrape.WithMaxBodyBytes(c.Scrape.MaxBodyBytes),
			scrape.WithHostRate(c.Scrape.RequestsPerSecond),
		),
		scrape.NewJinaAdapter(jinaClient(c), circuit("jina")),
	}
	if c.Firecrawl.Key != "" {
		fc := firecrawl.NewClient(c.Firecrawl.Key,
			firecrawl.WithBaseURL(c.Firecrawl.BaseURL),
			firecrawl.WithHTTPClient(httpClient(c)),
		)
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(fc))
	}
	return scrape.NewChain(scrape.NewPathMatcher(c.Scrape.ExcludePaths), scrapers...)
}

// buildGenerator returns the text generator the extraction mode needs, or
// nil for direct mode.
func buildGenerator(c *config.Config, mode extract.Mode) (llm.Generator, error) {
	switch mode {
	case extract.ModeSearch:
		if c.Perplexity.Key == "" {
			return nil, eris.New("perplexity key is required for search mode (COACH_PERPLEXITY_KEY)")
		}
		return perplexityGenerator(c), nil
	case extract.ModeDirect:
		return nil, nil
	default:
		if c.Anthropic.Key == "" {
			return nil, eris.New("anthropic key is required for llm mode (COACH_ANTHROPIC_KEY)")
		}
		client := anthropicpkg.NewClient(c.Anthropic.Key)
		return llm.NewAnthropicGenerator(client,
			llm.WithModel(c.Anthropic.Model),
			llm.WithMaxTokens(int64(c.Anthropic.MaxTokens)),
		), nil
	}
}

func buildDiscoverer(c *config.Config) (*discovery.Discoverer, error) {
	var searcher llm.Searcher
	if c.Perplexity.Key != "" {
		searcher = perplexityGenerator(c)
	}
	var jc jina.Client
	if c.Jina.Key != "" {
		jc = jinaClient(c)
	}
	d, err := discovery.New(searcher, jc, discovery.Config{
		MaxCandidates: c.Pipeline.MaxCandidates,
		Retry:         retryConfig(c),
	})
	if err != nil {
		return nil, eris.Wrap(err, "set COACH_PERPLEXITY_KEY or COACH_JINA_KEY")
	}
	return d, nil
}

func buildParser(c *config.Config) (*parse.Parser, error) {
	order, err := parse.ParseOrder(c.Pipeline.ParseOrder)
	if err != nil {
		return nil, err
	}
	return parse.New(parse.WithOrder(order...), parse.WithLimit(c.Pipeline.PerPageCap)), nil
}

func buildValidator(c *config.Config) (*validate.Validator, error) {
	if c.Pipeline.VocabularyFile == "" {
		return validate.Default(), nil
	}
	vocab, err := validate.LoadVocabulary(c.Pipeline.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return validate.New(vocab)
}

func retryConfig(c *config.Config) resilience.RetryConfig {
	return resilience.FromRetryConfig(
		c.Retry.MaxAttempts,
		c.Retry.InitialBackoffMs,
		c.Retry.MaxBackoffMs,
		c.Retry.Multiplier,
		c.Retry.JitterFraction,
		c.Pipeline.AttemptTimeoutSecs,
	)
}

func pipelineConfig(c *config.Config, mode extract.Mode, noCache bool) pipeline.Config {
	return pipeline.Config{
		Mode:           mode,
		Concurrency:    c.Pipeline.Concurrency,
		SoftThreshold:  c.Pipeline.SoftThreshold,
		HardCap:        c.Pipeline.HardCap,
		PerPageCap:     c.Pipeline.PerPageCap,
		MaxHTMLChars:   c.Pipeline.MaxHTMLChars,
		VerifyContacts: c.Pipeline.VerifyContacts,
		NoCache:        noCache,
		ResultTTL:      time.Duration(c.Store.ResultCacheTTLHours) * time.Hour,
		Retry:          retryConfig(c),
	}
}

// pipelineOptions are the per-invocation overrides taken from flags.
type pipelineOptions struct {
	mode    string
	noCache bool
	verify  bool
}

// buildPipeline wires every collaborator. st and disc may be nil.
func buildPipeline(c *config.Config, st store.Store, disc pipeline.Discoverer, opts pipelineOptions) (*pipeline.Pipeline, error) {
	modeName := opts.mode
	if modeName == "" {
		modeName = c.Pipeline.Mode
	}
	mode, err := extract.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	gen, err := buildGenerator(c, mode)
	if err != nil {
		return nil, err
	}
	parser, err := buildParser(c)
	if err != nil {
		return nil, err
	}
	v, err := buildValidator(c)
	if err != nil {
		return nil, err
	}

	pcfg := pipelineConfig(c, mode, opts.noCache)
	if opts.verify {
		pcfg.VerifyContacts = true
	}
	return pipeline.New(pcfg, st, disc, buildFetcher(c), gen, parser, v), nil
}
