// Package extract turns one candidate source URL into validated raw coach
// records. It is the worker the collector fans out across sources.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/llm"
	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/parse"
	"github.com/sells-group/coach-directory/internal/scrape"
	"github.com/sells-group/coach-directory/internal/validate"
)

// Mode selects how a page is turned into text for the parser.
type Mode string

const (
	// ModeLLM fetches the page and asks the generator to extract JSON.
	ModeLLM Mode = "llm"
	// ModeSearch asks a search-backed generator to visit the page itself.
	ModeSearch Mode = "search"
	// ModeDirect parses fetched markup without a generator.
	ModeDirect Mode = "direct"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxHTMLChars = 150000
	DefaultPerPageCap   = 15
	truncatedSuffix     = "... [truncated]"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLLM, ModeSearch, ModeDirect:
		return m, nil
	case "":
		return ModeLLM, nil
	default:
		return "", eris.Errorf("extract: unknown mode %q", s)
	}
}

// Config controls extraction.
type Config struct {
	Mode         Mode
	MaxHTMLChars int
	PerPageCap   int
}

// Extractor implements collect.Worker.
type Extractor struct {
	fetcher   scrape.Fetcher
	generator llm.Generator
	parser    *parse.Parser
	markup    *parse.Parser
	validator *validate.Validator
	cfg       Config
}

// New creates an Extractor. The fetcher is required for llm and direct
// modes; the generator for llm and search modes. A nil parser uses the
// default strategy order and a nil validator the default vocabulary.
func New(fetcher scrape.Fetcher, gen llm.Generator, parser *parse.Parser, v *validate.Validator, cfg Config) (*Extractor, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeLLM
	}
	if cfg.MaxHTMLChars <= 0 {
		cfg.MaxHTMLChars = DefaultMaxHTMLChars
	}
	if cfg.PerPageCap <= 0 {
		cfg.PerPageCap = DefaultPerPageCap
	}

	switch cfg.Mode {
	case ModeLLM:
		if fetcher == nil || gen == nil {
			return nil, eris.New("extract: llm mode needs a fetcher and a generator")
		}
	case ModeSearch:
		if gen == nil {
			return nil, eris.New("extract: search mode needs a generator")
		}
	case ModeDirect:
		if fetcher == nil {
			return nil, eris.New("extract: direct mode needs a fetcher")
		}
	default:
		return nil, eris.Errorf("extract: unknown mode %q", cfg.Mode)
	}

	if parser == nil {
		parser = parse.New(parse.WithLimit(cfg.PerPageCap))
	}
	if v == nil {
		v = validate.Default()
	}

	return &Extractor{
		fetcher:   fetcher,
		generator: gen,
		parser:    parser,
		markup:    parse.New(parse.WithOrder(parse.StrategyHTML), parse.WithLimit(cfg.PerPageCap)),
		validator: v,
		cfg:       cfg,
	}, nil
}

// Mode returns the configured mode.
func (e *Extractor) Mode() Mode { return e.cfg.Mode }

// Extract returns the validated records found at url, capped per page.
// Fetch and generation errors are returned as-is so the collector can
// classify them; a page with no parseable staff yields an empty slice.
func (e *Extractor) Extract(ctx context.Context, url string) ([]model.RawRecord, error) {
	var raw []model.RawRecord

	switch e.cfg.Mode {
	case ModeSearch:
		text, err := e.generator.Generate(ctx, llm.VisitPrompt(url))
		if err != nil {
			return nil, err
		}
		raw = e.parser.Parse(text, url)

	case ModeDirect:
		page, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		if page.HTML != "" {
			raw = e.markup.Parse(page.HTML, url)
		}
		if len(raw) == 0 {
			raw = e.parser.Parse(page.Text, url)
		}

	default:
		page, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		if page.Empty() {
			zap.L().Debug("extract: empty page, skipping generation", zap.String("url", url))
			return []model.RawRecord{}, nil
		}
		content := page.Content()
		if len(content) > e.cfg.MaxHTMLChars {
			zap.L().Info("extract: page too long, truncating",
				zap.String("url", url),
				zap.Int("chars", len(content)),
			)
			content = Truncate(content, e.cfg.MaxHTMLChars)
		}
		text, err := e.generator.Generate(ctx, llm.ExtractionPrompt(url, content))
		if err != nil {
			return nil, err
		}
		raw = e.parser.Parse(text, url)
	}

	if len(raw) > e.cfg.PerPageCap {
		raw = raw[:e.cfg.PerPageCap]
	}
	recs := e.validator.Filter(raw)

	zap.L().Info("extract: source complete",
		zap.String("url", url),
		zap.String("mode", string(e.cfg.Mode)),
		zap.Int("parsed", len(raw)),
		zap.Int("valid", len(recs)),
	)
	return recs, nil
}

// Truncate cuts s to at most n bytes on a rune boundary and marks the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + truncatedSuffix
}
