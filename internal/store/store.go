// Package store persists the run ledger: one row per conversation run,
// with its status and summary metrics. The workspace files remain the
// artifact hand-off between stages; the store is the queryable index over
// them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/hartfield-labs/factfind/internal/eval"
)

// ErrNotFound reports a run ID absent from the ledger. Callers use it to
// tell a missing run from a backend failure.
var ErrNotFound = errors.New("store: run not found")

// RunStatus tracks a run through the pipeline.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusEvaluated RunStatus = "evaluated"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one conversation's pass through the pipeline.
type Run struct {
	ID           string        `json:"id"`
	Experiment   string        `json:"experiment"`
	Conversation string        `json:"conversation"`
	Status       RunStatus     `json:"status"`
	Metrics      *eval.Metrics `json:"metrics,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Experiment string    `json:"experiment,omitempty"`
	Status     RunStatus `json:"status,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Store defines the persistence interface for the run ledger.
type Store interface {
	CreateRun(ctx context.Context, experiment, conversation string) (*Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus) error
	SaveEvaluation(ctx context.Context, runID string, metrics eval.Metrics) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
