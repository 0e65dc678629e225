// Package store persists run history and the per-query result cache.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/model"
)

// DefaultResultTTL is how long a finished query result is served from cache.
const DefaultResultTTL = 24 * time.Hour

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	School string          `json:"school,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// CachedResult is a stored outcome for one school and sport.
type CachedResult struct {
	Query     model.Query         `json:"query"`
	Records   []model.CoachRecord `json:"records"`
	CachedAt  time.Time           `json:"cached_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Store defines the persistence interface for the directory pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, q model.Query) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, runErr *model.RunError) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Result cache, keyed by Query.CacheKey. A miss returns nil, nil.
	GetCachedResult(ctx context.Context, q model.Query) (*CachedResult, error)
	SetCachedResult(ctx context.Context, q model.Query, records []model.CoachRecord, ttl time.Duration) error
	DeleteExpiredResults(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func listLimit(n int) int {
	if n <= 0 {
		return 100
	}
	return n
}
