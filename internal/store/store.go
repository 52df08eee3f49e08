// Package store persists batch screening runs and their per-site results so
// prior runs can be listed and audited after the fact.
package store

import (
	"context"
	"time"

	"github.com/parcelworks/sitescreen/internal/model"
	"github.com/parcelworks/sitescreen/internal/screening"
)

// RunStatus tracks a batch run's lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded batch screening run.
type Run struct {
	ID           string                  `json:"id"`
	State        string                  `json:"state"`
	ProgramYear  int                     `json:"program_year"`
	RulesVersion string                  `json:"rules_version"`
	Status       RunStatus               `json:"status"`
	Summary      *screening.BatchSummary `json:"summary,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	State  string    `json:"state,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for screening runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, state string, programYear int, rulesVersion string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, summary *screening.BatchSummary) error
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Results
	SaveResults(ctx context.Context, runID string, results []*model.ScoringResult) error
	ListResults(ctx context.Context, runID string) ([]model.ScoringResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
