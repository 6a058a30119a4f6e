package driven

import (
	"context"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// BillSource supplies the input batch.
// The whole batch is materialised before a run starts.
type BillSource interface {
	// Load returns all records in input order.
	Load(ctx context.Context) ([]domain.BillRecord, error)

	// Name describes the source for logging.
	Name() string
}
