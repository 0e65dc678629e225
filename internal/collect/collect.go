// Package collect runs the per-source extractor across candidate URLs with
// bounded concurrency and stops early once enough records are gathered.
package collect

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
)

// Defaults applied to zero Config fields.
const (
	DefaultConcurrency   = 3
	DefaultSoftThreshold = 10
	DefaultHardCap       = 15
)

// Worker extracts validated raw records from one source. Implementations
// must not touch collector state.
type Worker interface {
	Extract(ctx context.Context, url string) ([]model.RawRecord, error)
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context, url string) ([]model.RawRecord, error)

// Extract calls f.
func (f WorkerFunc) Extract(ctx context.Context, url string) ([]model.RawRecord, error) {
	return f(ctx, url)
}

// Config controls the collector.
type Config struct {
	Concurrency   int
	SoftThreshold int
	HardCap       int
	Retry         resilience.RetryConfig
}

// Stats counts how each dispatched source ended.
type Stats struct {
	Sources   int `json:"sources"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Result is the outcome of one collection.
type Result struct {
	Records   []model.RawRecord     `json:"records"`
	Failures  []model.SourceFailure `json:"failures,omitempty"`
	Stats     Stats                 `json:"stats"`
	EarlyStop bool                  `json:"early_stop"`
}

// Collector drives a Worker across sources.
type Collector struct {
	worker Worker
	cfg    Config
}

// New creates a Collector.
func New(w Worker, cfg Config) *Collector {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.SoftThreshold <= 0 {
		cfg.SoftThreshold = DefaultSoftThreshold
	}
	if cfg.HardCap <= 0 {
		cfg.HardCap = DefaultHardCap
	}
	return &Collector{worker: w, cfg: cfg}
}

type outcome struct {
	url       string
	records   []model.RawRecord
	attempts  int
	err       error
	cancelled bool
}

// Collect extracts from urls and returns records in completion order,
// truncated to the hard cap. Per-source failures are recorded and skipped.
// A credential failure cancels every other source and is returned. Collect
// returns only after every started worker has exited.
func (c *Collector) Collect(ctx context.Context, urls []string) (*Result, error) {
	res := &Result{Stats: Stats{Sources: len(urls)}}
	if len(urls) == 0 {
		return res, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, len(urls))
	gate := semaphore.NewWeighted(int64(c.cfg.Concurrency))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, u := range urls {
			if err := gate.Acquire(runCtx, 1); err != nil {
				for _, skipped := range urls[i:] {
					results <- outcome{url: skipped, err: err, cancelled: true}
				}
				return
			}
			wg.Add(1)
			go func(url string) {
				defer wg.Done()
				defer gate.Release(1)
				results <- c.run(runCtx, url)
			}(u)
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var fatal error
	for o := range results {
		switch {
		case o.err != nil && resilience.IsCredential(o.err):
			if fatal == nil {
				fatal = o.err
				zap.L().Error("collect: credential failure, aborting run",
					zap.String("url", o.url),
					zap.Error(o.err),
				)
				cancel()
			}
		case o.cancelled:
			res.Stats.Cancelled++
		case o.err != nil:
			res.Stats.Failed++
			res.Failures = append(res.Failures, resilience.NewSourceFailure(o.url, o.err, o.attempts))
			zap.L().Warn("collect: source failed",
				zap.String("url", o.url),
				zap.Int("attempts", o.attempts),
				zap.String("category", resilience.ClassifyError(o.err)),
				zap.Error(o.err),
			)
		default:
			res.Stats.Completed++
			res.Records = append(res.Records, o.records...)
			if !res.EarlyStop && fatal == nil && len(res.Records) >= c.cfg.SoftThreshold {
				res.EarlyStop = true
				zap.L().Info("collect: threshold reached, cancelling remaining sources",
					zap.Int("records", len(res.Records)),
					zap.Int("threshold", c.cfg.SoftThreshold),
				)
				cancel()
			}
		}
	}

	if fatal != nil {
		return nil, eris.Wrap(fatal, "collect: aborted")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "collect: cancelled")
	}

	if len(res.Records) > c.cfg.HardCap {
		res.Records = res.Records[:c.cfg.HardCap]
	}
	zap.L().Info("collect: finished",
		zap.Int("records", len(res.Records)),
		zap.Int("completed", res.Stats.Completed),
		zap.Int("failed", res.Stats.Failed),
		zap.Int("cancelled", res.Stats.Cancelled),
	)
	return res, nil
}

// run is the worker body. It only reads its arguments and returns an
// outcome; accumulation happens on the coordinator.
func (c *Collector) run(ctx context.Context, url string) outcome {
	if ctx.Err() != nil {
		return outcome{url: url, err: ctx.Err(), cancelled: true}
	}
	start := time.Now()
	retry := c.cfg.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("collect", url)
	}
	recs, attempts, err := resilience.DoCount(ctx, retry, func(ctx context.Context) ([]model.RawRecord, error) {
		return c.worker.Extract(ctx, url)
	})
	o := outcome{url: url, records: recs, attempts: attempts, err: err}
	if err != nil && ctx.Err() != nil && !resilience.IsCredential(err) {
		o.cancelled = true
	}
	zap.L().Debug("collect: source done",
		zap.String("url", url),
		zap.Int("records", len(recs)),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("cancelled", o.cancelled),
	)
	return o
}
