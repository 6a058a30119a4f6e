package driven

import (
	"context"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// ResultStore persists completed pipeline runs.
// Only complete, consistent results are ever saved.
type ResultStore interface {
	// SaveRun stores a completed run.
	SaveRun(ctx context.Context, result *domain.RunResult) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, runID string) (*domain.RunResult, error)

	// ListRuns returns summaries of all stored runs, newest first.
	ListRuns(ctx context.Context) ([]domain.RunSummary, error)

	// DeleteRun removes a run and all its rows.
	DeleteRun(ctx context.Context, runID string) error
}
