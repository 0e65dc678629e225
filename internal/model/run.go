package model

import "time"

// RunStatus represents the current state of a directory run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusDiscovering RunStatus = "discovering"
	RunStatusCollecting  RunStatus = "collecting"
	RunStatusVerifying   RunStatus = "verifying"
	RunStatusNormalizing RunStatus = "normalizing"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// ErrorCategory classifies why a run failed.
type ErrorCategory string

const (
	ErrorCategoryCredential ErrorCategory = "credential"
	ErrorCategoryTransient  ErrorCategory = "transient"
	ErrorCategoryPermanent  ErrorCategory = "permanent"
)

// RunError records the failure that ended a run.
type RunError struct {
	Message  string        `json:"message"`
	Category ErrorCategory `json:"category"`
}

// Run is a single pipeline invocation for a Query.
type Run struct {
	ID        string     `json:"id"`
	Query     Query      `json:"query"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Error     *RunError  `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	RunID      string          `json:"run_id,omitempty"`
	Query      Query           `json:"query"`
	Candidates []string        `json:"candidates"`
	Records    []CoachRecord   `json:"records"`
	Failures   []SourceFailure `json:"failures,omitempty"`
	Phases     []PhaseResult   `json:"phases"`
	FromCache  bool            `json:"from_cache"`
}

// SourceFailure records a candidate URL that contributed no records
// because of an error.
type SourceFailure struct {
	URL       string    `json:"url"`
	Error     string    `json:"error"`
	ErrorType string    `json:"error_type"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
}

// PhaseStatus represents the state of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
