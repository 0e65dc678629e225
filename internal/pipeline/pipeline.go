// Package pipeline wires discovery, collection, verification and
// normalization into one run per school and sport.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/extract"
	"github.com/sells-group/coach-directory/internal/llm"
	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/normalize"
	"github.com/sells-group/coach-directory/internal/parse"
	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/internal/scrape"
	"github.com/sells-group/coach-directory/internal/store"
	"github.com/sells-group/coach-directory/internal/validate"
)

// Phase names, in execution order.
const (
	PhaseDiscover  = "1_discover"
	PhaseCollect   = "2_collect"
	PhaseVerify    = "3_verify"
	PhaseNormalize = "4_normalize"
)

// ErrNoCandidates is returned by Extract when no source URLs are supplied.
var ErrNoCandidates = eris.New("pipeline: no candidate urls")

// Discoverer finds candidate directory URLs for a query.
type Discoverer interface {
	Discover(ctx context.Context, q model.Query) ([]string, error)
}

// Config controls a pipeline.
type Config struct {
	Mode           extract.Mode
	Concurrency    int
	SoftThreshold  int
	HardCap        int
	PerPageCap     int
	MaxHTMLChars   int
	VerifyContacts bool
	NoCache        bool
	ResultTTL      time.Duration
	Retry          resilience.RetryConfig
}

// Pipeline orchestrates the phases of a directory run.
type Pipeline struct {
	cfg        Config
	store      store.Store
	discoverer Discoverer
	fetcher    scrape.Fetcher
	generator  llm.Generator
	parser     *parse.Parser
	validator  *validate.Validator
}

// New creates a Pipeline. st may be nil, in which case runs are neither
// recorded nor cached. parser and validator fall back to their defaults.
func New(
	cfg Config,
	st store.Store,
	disc Discoverer,
	fetcher scrape.Fetcher,
	gen llm.Generator,
	parser *parse.Parser,
	v *validate.Validator,
) *Pipeline {
	if cfg.HardCap <= 0 {
		cfg.HardCap = normalize.DefaultHardCap
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = store.DefaultResultTTL
	}
	if parser == nil {
		parser = parse.New(parse.WithLimit(cfg.PerPageCap))
	}
	if v == nil {
		v = validate.Default()
	}
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		discoverer: disc,
		fetcher:    fetcher,
		generator:  gen,
		parser:     parser,
		validator:  v,
	}
}

// Run executes discovery through normalization for q. An empty record list
// is a successful outcome; only credential failures, invalid input and
// cancellation return an error.
func (p *Pipeline) Run(ctx context.Context, q model.Query) (*model.RunResult, error) {
	q = model.Query{School: strings.TrimSpace(q.School), Sport: strings.TrimSpace(q.Sport)}
	if q.School == "" || q.Sport == "" {
		return nil, eris.New("pipeline: school and sport are required")
	}
	if p.discoverer == nil {
		return nil, eris.New("pipeline: no discoverer configured")
	}

	log := zap.L().With(zap.String("school", q.School), zap.String("sport", q.Sport))
	log.Info("pipeline: starting run")

	if cached := p.cachedResult(ctx, q); cached != nil {
		log.Info("pipeline: serving cached result", zap.Int("records", len(cached.Records)))
		return &model.RunResult{
			Query:     q,
			Records:   cached.Records,
			Phases:    []model.PhaseResult{},
			FromCache: true,
		}, nil
	}

	result := &model.RunResult{
		Query:      q,
		Candidates: []string{},
		Records:    []model.CoachRecord{},
	}
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, q)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		result.RunID = run.ID
	}
	log = log.With(zap.String("run_id", result.RunID))

	fail := func(err error) (*model.RunResult, error) {
		if p.store != nil && result.RunID != "" {
			runErr := &model.RunError{
				Message:  err.Error(),
				Category: model.ErrorCategory(resilience.ClassifyError(err)),
			}
			// The caller's context may already be done.
			if ferr := p.store.FailRun(context.WithoutCancel(ctx), result.RunID, runErr); ferr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(ferr))
			}
		}
		log.Error("pipeline: run failed", zap.Error(err))
		return nil, err
	}

	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) error {
		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			if phaseResult.Status == "" {
				phaseResult.Status = model.PhaseStatusComplete
			}
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.String("status", string(phaseResult.Status)),
				zap.Int64("duration_ms", duration),
			)
		}
		result.Phases = append(result.Phases, *phaseResult)
		return fnErr
	}

	// Phase 1: Discover
	p.setStatus(ctx, result.RunID, model.RunStatusDiscovering)
	err := trackPhase(PhaseDiscover, func() (*model.PhaseResult, error) {
		urls, err := p.discoverer.Discover(ctx, q)
		if err != nil {
			return nil, err
		}
		result.Candidates = append(result.Candidates, urls...)
		return &model.PhaseResult{
			Metadata: map[string]any{"candidates": len(urls)},
		}, nil
	})
	if err != nil {
		return fail(err)
	}

	if len(result.Candidates) == 0 {
		log.Warn("pipeline: no candidate urls discovered")
	} else {
		s := p.newSession()

		// Phase 2: Collect
		var raw []model.RawRecord
		p.setStatus(ctx, result.RunID, model.RunStatusCollecting)
		err = trackPhase(PhaseCollect, func() (*model.PhaseResult, error) {
			res, err := s.collect(ctx, result.Candidates)
			if err != nil {
				return nil, err
			}
			raw = res.Records
			result.Failures = res.Failures
			return &model.PhaseResult{
				Metadata: map[string]any{
					"raw_records": len(res.Records),
					"completed":   res.Stats.Completed,
					"failed":      res.Stats.Failed,
					"cancelled":   res.Stats.Cancelled,
					"early_stop":  res.EarlyStop,
				},
			}, nil
		})
		if err != nil {
			return fail(err)
		}

		// Phase 3: Verify
		p.setStatus(ctx, result.RunID, model.RunStatusVerifying)
		err = trackPhase(PhaseVerify, func() (*model.PhaseResult, error) {
			if !s.canVerify() {
				return &model.PhaseResult{Status: model.PhaseStatusSkipped}, nil
			}
			checked, err := s.verify(ctx, raw)
			if err != nil {
				return nil, err
			}
			raw = checked
			return &model.PhaseResult{
				Metadata: map[string]any{"pages": s.pages.Len()},
			}, nil
		})
		if err != nil {
			return fail(err)
		}

		// Phase 4: Normalize
		p.setStatus(ctx, result.RunID, model.RunStatusNormalizing)
		_ = trackPhase(PhaseNormalize, func() (*model.PhaseResult, error) {
			result.Records = normalize.Records(raw, p.cfg.HardCap)
			return &model.PhaseResult{
				Metadata: map[string]any{
					"raw_records": len(raw),
					"records":     len(result.Records),
				},
			}, nil
		})
	}

	if p.store != nil {
		if err := p.store.CompleteRun(ctx, result.RunID, result); err != nil {
			log.Warn("pipeline: failed to record run result", zap.Error(err))
		}
		if len(result.Records) > 0 {
			if err := p.store.SetCachedResult(ctx, q, result.Records, p.cfg.ResultTTL); err != nil {
				log.Warn("pipeline: failed to cache result", zap.Error(err))
			}
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("candidates", len(result.Candidates)),
		zap.Int("records", len(result.Records)),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// Extract runs collection, optional verification and normalization over
// caller-supplied URLs. It returns ErrNoCandidates for an empty list and
// otherwise fails only on credential errors or cancellation.
func (p *Pipeline) Extract(ctx context.Context, urls []string) ([]model.CoachRecord, error) {
	urls = uniqueURLs(urls)
	if len(urls) == 0 {
		return nil, ErrNoCandidates
	}

	s := p.newSession()
	res, err := s.collect(ctx, urls)
	if err != nil {
		return nil, err
	}
	raw := res.Records
	if s.canVerify() {
		raw, err = s.verify(ctx, raw)
		if err != nil {
			return nil, err
		}
	}
	return normalize.Records(raw, p.cfg.HardCap), nil
}

func (p *Pipeline) cachedResult(ctx context.Context, q model.Query) *store.CachedResult {
	if p.store == nil || p.cfg.NoCache {
		return nil
	}
	cached, err := p.store.GetCachedResult(ctx, q)
	if err != nil {
		zap.L().Warn("pipeline: result cache lookup failed", zap.Error(err))
		return nil
	}
	return cached
}

func (p *Pipeline) setStatus(ctx context.Context, runID string, status model.RunStatus) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
		zap.L().Warn("pipeline: failed to update run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func uniqueURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
