// Package parse turns one source's free-form response into raw coach
// field-sets. Several strategies are tried in a configurable order; the
// first one that yields a complete record wins.
package parse

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/model"
)

// Strategy names one parsing approach.
type Strategy string

const (
	// StrategyStructured reads "KEY: value" blocks separated by --- or blank lines.
	StrategyStructured Strategy = "structured"
	// StrategyJSON reads a top-level array or an object holding one.
	StrategyJSON Strategy = "json"
	// StrategyLines reads "<name> - <position>" lines.
	StrategyLines Strategy = "lines"
	// StrategyHTML reads staff tables and cards from page markup.
	StrategyHTML Strategy = "html"
)

// DefaultOrder is the fallback order for generated text.
var DefaultOrder = []Strategy{StrategyStructured, StrategyJSON, StrategyLines}

type strategyFunc func(text string) []model.RawRecord

var strategies = map[Strategy]strategyFunc{
	StrategyStructured: parseStructured,
	StrategyJSON:       parseJSON,
	StrategyLines:      parseLines,
	StrategyHTML:       parseHTML,
}

// ParseOrder converts configured strategy names into an order, rejecting
// unknown names.
func ParseOrder(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return append([]Strategy(nil), DefaultOrder...), nil
	}
	order := make([]Strategy, 0, len(names))
	for _, n := range names {
		s := Strategy(strings.ToLower(strings.TrimSpace(n)))
		if _, ok := strategies[s]; !ok {
			return nil, eris.Errorf("parse: unknown strategy %q", n)
		}
		order = append(order, s)
	}
	return order, nil
}

// Parser runs strategies in order.
type Parser struct {
	order []Strategy
	limit int
}

// Option configures a Parser.
type Option func(*Parser)

// WithOrder sets the strategy order.
func WithOrder(order ...Strategy) Option {
	return func(p *Parser) {
		if len(order) > 0 {
			p.order = order
		}
	}
}

// WithLimit caps the number of records returned per call. Zero means no cap.
func WithLimit(n int) Option {
	return func(p *Parser) { p.limit = n }
}

// New creates a Parser using DefaultOrder unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{order: DefaultOrder}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Order returns the configured strategy order.
func (p *Parser) Order() []Strategy {
	return p.order
}

// Parse returns the complete field-sets found in text, in source order,
// each tagged with source. Unparseable text yields an empty slice.
func (p *Parser) Parse(text, source string) []model.RawRecord {
	if strings.TrimSpace(text) == "" {
		zap.L().Debug("parse: empty response", zap.String("source", source))
		return nil
	}

	for _, s := range p.order {
		fn, ok := strategies[s]
		if !ok {
			continue
		}
		recs := complete(fn(text))
		if len(recs) == 0 {
			continue
		}
		if p.limit > 0 && len(recs) > p.limit {
			recs = recs[:p.limit]
		}
		for i := range recs {
			recs[i].Source = source
		}
		zap.L().Debug("parse: records found",
			zap.String("source", source),
			zap.String("strategy", string(s)),
			zap.Int("count", len(recs)),
		)
		return recs
	}

	zap.L().Debug("parse: no records found",
		zap.String("source", source),
		zap.Int("chars", len(text)),
	)
	return nil
}

// complete trims every field and drops field-sets missing a name or position.
func complete(recs []model.RawRecord) []model.RawRecord {
	out := recs[:0]
	for _, r := range recs {
		r.Name = strings.TrimSpace(r.Name)
		r.Position = strings.TrimSpace(r.Position)
		r.Email = strings.TrimSpace(r.Email)
		r.Phone = strings.TrimSpace(r.Phone)
		r.SocialHandle = strings.TrimSpace(r.SocialHandle)
		if r.Complete() {
			out = append(out, r)
		}
	}
	return out
}

// blankValue reports placeholder values that mean "not listed".
func blankValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "na", "none", "null", "-", "not listed", "not found", "not available", "unknown":
		return true
	}
	return false
}

func clean(v string) string {
	if blankValue(v) {
		return ""
	}
	return strings.TrimSpace(v)
}
