// Package aggregation joins topic assignments with bill metadata.
package aggregation

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Aggregator implements the interface.
var _ driven.Aggregator = (*Aggregator)(nil)

// Aggregator counts bills and sums votes per (topic, dimension value).
// Every bill contributes to exactly one row per dimension; combinations
// without bills produce no row.
type Aggregator struct{}

// New creates an aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

type rowKey struct {
	topic int
	value string
}

// Aggregate returns rows for one dimension, ordered by topic id then value.
// Outlier bills aggregate under domain.OutlierTopicID.
func (a *Aggregator) Aggregate(bills []domain.Bill, assignments []int, dim domain.Dimension) ([]domain.AggregateRow, error) {
	if len(bills) != len(assignments) {
		return nil, &domain.InternalConsistencyError{
			Detail: fmt.Sprintf("%d bills but %d assignments", len(bills), len(assignments)),
		}
	}
	if !dim.Kind.IsValid() {
		return nil, fmt.Errorf("%w: dimension %q", domain.ErrUnsupportedType, dim.Kind)
	}

	rows := make(map[rowKey]*domain.AggregateRow)
	for i, b := range bills {
		key := rowKey{topic: assignments[i], value: dim.Value(b)}
		row, ok := rows[key]
		if !ok {
			row = &domain.AggregateRow{TopicID: key.topic, Dimension: dim.Kind, Value: key.value}
			rows[key] = row
		}
		row.Count++
		row.YeaSum += b.VoteYea
		row.NaySum += b.VoteNay
	}

	out := make([]domain.AggregateRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TopicID != out[j].TopicID {
			return out[i].TopicID < out[j].TopicID
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}
