package config

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver              string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL         string `yaml:"database_url" mapstructure:"database_url"`
	ResultCacheTTLHours int    `yaml:"result_cache_ttl_hours" mapstructure:"result_cache_ttl_hours"`
	MaxConns            int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns            int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScrapeConfig configures direct page fetching.
type ScrapeConfig struct {
	TimeoutSecs       int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyBytes      int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	ExcludePaths      []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// PipelineConfig configures discovery, extraction and collection.
type PipelineConfig struct {
	Mode               string   `yaml:"mode" mapstructure:"mode"`
	Concurrency        int      `yaml:"concurrency" mapstructure:"concurrency"`
	SoftThreshold      int      `yaml:"soft_threshold" mapstructure:"soft_threshold"`
	HardCap            int      `yaml:"hard_cap" mapstructure:"hard_cap"`
	PerPageCap         int      `yaml:"per_page_cap" mapstructure:"per_page_cap"`
	MaxCandidates      int      `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxHTMLChars       int      `yaml:"max_html_chars" mapstructure:"max_html_chars"`
	AttemptTimeoutSecs int      `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
	VerifyContacts     bool     `yaml:"verify_contacts" mapstructure:"verify_contacts"`
	ParseOrder         []string `yaml:"parse_order" mapstructure:"parse_order"`
	VocabularyFile     string   `yaml:"vocabulary_file" mapstructure:"vocabulary_file"`
}

// RetryConfig configures backoff for transient upstream failures.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig configures the circuit breakers around hosted scrapers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var (
	validDrivers = []string{"sqlite", "postgres"}
	validModes   = []string{"llm", "search", "direct"}
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "coaches.db")
	v.SetDefault("store.result_cache_ttl_hours", 24)
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("perplexity.key", "")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("scrape.timeout_secs", 60)
	v.SetDefault("scrape.max_body_bytes", 2<<20)
	v.SetDefault("scrape.requests_per_second", 2.0)
	v.SetDefault("scrape.exclude_paths", []string{"/news/*", "/article/*", "/roster/coaches/*"})
	v.SetDefault("pipeline.mode", "llm")
	v.SetDefault("pipeline.concurrency", 3)
	v.SetDefault("pipeline.soft_threshold", 10)
	v.SetDefault("pipeline.hard_cap", 15)
	v.SetDefault("pipeline.per_page_cap", 15)
	v.SetDefault("pipeline.max_candidates", 5)
	v.SetDefault("pipeline.max_html_chars", 150000)
	v.SetDefault("pipeline.attempt_timeout_secs", 60)
	v.SetDefault("pipeline.verify_contacts", false)
	v.SetDefault("pipeline.parse_order", []string{"structured", "json", "lines"})
	v.SetDefault("pipeline.vocabulary_file", "")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 1000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("circuit.failure_threshold", 3)
	v.SetDefault("circuit.reset_timeout_secs", 60)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated settings and bounds.
func (c *Config) Validate() error {
	if !slices.Contains(validDrivers, c.Store.Driver) {
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if !slices.Contains(validModes, c.Pipeline.Mode) {
		return eris.Errorf("config: unknown pipeline mode %q", c.Pipeline.Mode)
	}
	if c.Pipeline.Concurrency < 1 {
		return eris.Errorf("config: pipeline.concurrency must be at least 1, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.HardCap < 1 {
		return eris.Errorf("config: pipeline.hard_cap must be at least 1, got %d", c.Pipeline.HardCap)
	}
	if c.Pipeline.SoftThreshold > c.Pipeline.HardCap {
		return eris.Errorf("config: pipeline.soft_threshold (%d) exceeds hard_cap (%d)",
			c.Pipeline.SoftThreshold, c.Pipeline.HardCap)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
