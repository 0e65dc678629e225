package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/coach-directory/internal/config"
	"github.com/sells-group/coach-directory/internal/extract"
	"github.com/sells-group/coach-directory/internal/parse"
	"github.com/sells-group/coach-directory/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", ResultCacheTTLHours: 24},
		Scrape: config.ScrapeConfig{
			TimeoutSecs:       5,
			MaxBodyBytes:      1 << 20,
			RequestsPerSecond: 2,
			ExcludePaths:      []string{"/news/*"},
		},
		Pipeline: config.PipelineConfig{
			Mode:               "direct",
			Concurrency:        3,
			SoftThreshold:      10,
			HardCap:            15,
			PerPageCap:         15,
			MaxCandidates:      5,
			MaxHTMLChars:       150000,
			AttemptTimeoutSecs: 30,
			ParseOrder:         []string{"structured", "json", "lines"},
		},
		Retry:   config.RetryConfig{MaxAttempts: 4, InitialBackoffMs: 200},
		Circuit: config.CircuitConfig{FailureThreshold: 3, ResetTimeoutSecs: 60},
	}
}

func TestInitStore_SQLite(t *testing.T) {
	c := testConfig()
	c.Store.DatabaseURL = filepath.Join(t.TempDir(), "coaches.db")

	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestInitStore_UnknownDriver(t *testing.T) {
	c := testConfig()
	c.Store.Driver = "mysql"

	_, err := initStore(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestBuildGenerator_RequiresKeys(t *testing.T) {
	c := testConfig()

	_, err := buildGenerator(c, extract.ModeLLM)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COACH_ANTHROPIC_KEY")

	_, err = buildGenerator(c, extract.ModeSearch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COACH_PERPLEXITY_KEY")

	gen, err := buildGenerator(c, extract.ModeDirect)
	require.NoError(t, err)
	assert.Nil(t, gen)

	c.Anthropic.Key = "sk-ant-test"
	gen, err = buildGenerator(c, extract.ModeLLM)
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestBuildDiscoverer_RequiresBackend(t *testing.T) {
	c := testConfig()

	_, err := buildDiscoverer(c)
	require.Error(t, err)

	c.Jina.Key = "jina-test"
	d, err := buildDiscoverer(c)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestBuildParser(t *testing.T) {
	c := testConfig()
	c.Pipeline.ParseOrder = []string{"lines", "json"}

	p, err := buildParser(c)
	require.NoError(t, err)
	assert.Equal(t, []parse.Strategy{parse.StrategyLines, parse.StrategyJSON}, p.Order())

	c.Pipeline.ParseOrder = []string{"telepathy"}
	_, err = buildParser(c)
	assert.Error(t, err)
}

func TestBuildValidator_VocabularyFile(t *testing.T) {
	c := testConfig()
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coaching: [coach]\nexcluded: [trainer]\n"), 0o644))
	c.Pipeline.VocabularyFile = path

	v, err := buildValidator(c)
	require.NoError(t, err)
	assert.True(t, v.IsCoachingPosition("Head Coach"))
	assert.False(t, v.IsCoachingPosition("Recruiting Coordinator"))
}

func TestPipelineConfig(t *testing.T) {
	c := testConfig()
	c.Pipeline.VerifyContacts = true

	pc := pipelineConfig(c, extract.ModeDirect, true)
	assert.Equal(t, extract.ModeDirect, pc.Mode)
	assert.True(t, pc.NoCache)
	assert.True(t, pc.VerifyContacts)
	assert.Equal(t, 24*time.Hour, pc.ResultTTL)
	assert.Equal(t, 4, pc.Retry.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, pc.Retry.InitialBackoff)
	assert.Equal(t, 30*time.Second, pc.Retry.AttemptTimeout)
}

func TestBuildPipeline_ModeOverride(t *testing.T) {
	c := testConfig()
	c.Pipeline.Mode = "llm"

	// llm mode without a key fails; the direct override needs no generator.
	_, err := buildPipeline(c, nil, nil, pipelineOptions{})
	require.Error(t, err)

	p, err := buildPipeline(c, nil, nil, pipelineOptions{mode: "direct"})
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = buildPipeline(c, nil, nil, pipelineOptions{mode: "browser"})
	assert.Error(t, err)
}
