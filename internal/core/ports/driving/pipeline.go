package driving

import (
	"context"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// TopicPipeline runs the full batch: normalise, embed, cluster, label,
// aggregate and correlate.
type TopicPipeline interface {
	// Run processes the whole batch and returns a complete result.
	// Invalid records are skipped and reported in the result; structural
	// failures abort the run with a *domain.RunError and no partial result.
	Run(ctx context.Context, records []domain.BillRecord) (*domain.RunResult, error)
}

// ResultService exposes stored runs to the CLI.
type ResultService interface {
	// ListRuns returns summaries of stored runs, newest first.
	ListRuns(ctx context.Context) ([]domain.RunSummary, error)

	// GetRun retrieves a stored run.
	GetRun(ctx context.Context, runID string) (*domain.RunResult, error)

	// DeleteRun removes a stored run.
	DeleteRun(ctx context.Context, runID string) error

	// Export writes a stored run using the named format and returns the files written.
	Export(ctx context.Context, runID, format, dir string) ([]string, error)
}
