// Package correlation computes topic-to-topic co-occurrence weights.
package correlation

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.CorrelationBuilder = (*Builder)(nil)

// Builder weights topic pairs by the Jaccard overlap of their key sets.
// With the sponsor key, two topics co-occur when one sponsor has a bill in
// each; with the state key, when one state has a bill in each.
type Builder struct {
	key domain.CooccurrenceKey
}

// New creates a builder for the given co-occurrence key.
func New(key domain.CooccurrenceKey) *Builder {
	return &Builder{key: key}
}

// Key returns the co-occurrence key.
func (b *Builder) Key() domain.CooccurrenceKey {
	return b.key
}

// Build returns one entry per unordered topic pair with a non-empty overlap,
// ordered by (TopicA, TopicB) with TopicA < TopicB. Outlier bills are ignored.
func (b *Builder) Build(bills []domain.Bill, assignments []int) ([]domain.CorrelationEntry, error) {
	if len(bills) != len(assignments) {
		return nil, &domain.InternalConsistencyError{
			Detail: fmt.Sprintf("%d bills but %d assignments", len(bills), len(assignments)),
		}
	}
	if !b.key.IsValid() {
		return nil, fmt.Errorf("%w: co-occurrence key %q", domain.ErrUnsupportedType, b.key)
	}

	sets := make(map[int]map[string]struct{})
	for i, bill := range bills {
		topic := assignments[i]
		if topic == domain.OutlierTopicID {
			continue
		}
		set, ok := sets[topic]
		if !ok {
			set = make(map[string]struct{})
			sets[topic] = set
		}
		for _, k := range b.keys(bill) {
			set[k] = struct{}{}
		}
	}

	topics := make([]int, 0, len(sets))
	for id := range sets {
		topics = append(topics, id)
	}
	sort.Ints(topics)

	var entries []domain.CorrelationEntry
	for i, a := range topics {
		for _, c := range topics[i+1:] {
			shared, union := overlap(sets[a], sets[c])
			if shared == 0 {
				continue
			}
			entries = append(entries, domain.CorrelationEntry{
				TopicA: a,
				TopicB: c,
				Weight: float64(shared) / float64(union),
			})
		}
	}
	return entries, nil
}

// keys returns the co-occurrence keys a bill contributes.
func (b *Builder) keys(bill domain.Bill) []string {
	switch b.key {
	case domain.CooccurrenceState:
		if bill.State == "" {
			return nil
		}
		return []string{bill.State}
	default:
		return bill.SponsorIDs
	}
}

// overlap returns |a ∩ b| and |a ∪ b|.
func overlap(a, b map[string]struct{}) (shared, union int) {
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return shared, len(a) + len(b) - shared
}
