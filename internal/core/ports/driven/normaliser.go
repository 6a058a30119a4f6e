package driven

import (
	"context"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// Normaliser transforms a bill's raw text into a token sequence.
// Normalisation is deterministic: identical text always yields identical tokens.
type Normaliser interface {
	// Name returns the normaliser name for logging.
	Name() string

	// Normalise cleans and tokenises the bill text.
	// Empty or non-text input yields an empty token sequence, not an error.
	Normalise(ctx context.Context, bill domain.Bill) (domain.NormalizedDocument, error)
}
