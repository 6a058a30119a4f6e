package driven

import (
	"context"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// Clusterer assigns topic ids to the full corpus at once.
type Clusterer interface {
	// Cluster returns one topic id per vector, in input order.
	// Ids are dense, nonnegative and ordered by descending member count;
	// domain.OutlierTopicID marks unassigned documents.
	// Fewer than two topics yields a domain.InsufficientTopicsError.
	Cluster(ctx context.Context, vectors [][]float32) ([]int, error)
}

// Labeler extracts keyword signatures for clustered documents.
type Labeler interface {
	// Label returns one Topic per non-outlier topic id, ordered by id.
	// docs and assignments are parallel slices.
	Label(ctx context.Context, docs []domain.NormalizedDocument, assignments []int) ([]domain.Topic, error)
}

// Aggregator groups topic assignments along one dimension.
type Aggregator interface {
	// Aggregate returns rows ordered by topic id then value.
	// bills and assignments are parallel slices.
	Aggregate(bills []domain.Bill, assignments []int, dim domain.Dimension) ([]domain.AggregateRow, error)
}

// CorrelationBuilder computes pairwise topic co-occurrence.
type CorrelationBuilder interface {
	// Build returns entries ordered by (TopicA, TopicB).
	// bills and assignments are parallel slices.
	Build(bills []domain.Bill, assignments []int) ([]domain.CorrelationEntry, error)
}
