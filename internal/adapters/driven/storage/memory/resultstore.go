package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
// Runs live for the life of the process; used for --no-store runs and tests.
type ResultStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.RunResult
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		runs: make(map[string]*domain.RunResult),
	}
}

// SaveRun stores a completed run. Saving an existing run id replaces it.
func (s *ResultStore) SaveRun(_ context.Context, result *domain.RunResult) error {
	if result == nil || result.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[result.RunID] = result
	return nil
}

// GetRun retrieves a run by ID.
func (s *ResultStore) GetRun(_ context.Context, runID string) (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return result, nil
}

// ListRuns returns summaries of all stored runs, newest first.
func (s *ResultStore) ListRuns(_ context.Context) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]domain.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r.Summary())
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
	return runs, nil
}

// DeleteRun removes a run.
func (s *ResultStore) DeleteRun(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, runID)
	return nil
}
