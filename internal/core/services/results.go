package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/core/ports/driving"
)

// Ensure ResultService implements the interface.
var _ driving.ResultService = (*ResultService)(nil)

// ResultService reads, deletes and exports stored runs.
type ResultService struct {
	store     driven.ResultStore
	exporters map[string]driven.Exporter
}

// NewResultService creates a result service over store with the given exporters.
func NewResultService(store driven.ResultStore, exporters ...driven.Exporter) *ResultService {
	s := &ResultService{
		store:     store,
		exporters: make(map[string]driven.Exporter, len(exporters)),
	}
	for _, e := range exporters {
		s.exporters[e.Format()] = e
	}
	return s
}

// Formats returns the registered export formats, sorted.
func (s *ResultService) Formats() []string {
	formats := make([]string, 0, len(s.exporters))
	for f := range s.exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// ListRuns returns summaries of stored runs, newest first.
func (s *ResultService) ListRuns(ctx context.Context) ([]domain.RunSummary, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.ListRuns(ctx)
}

// GetRun retrieves a stored run.
func (s *ResultService) GetRun(ctx context.Context, runID string) (*domain.RunResult, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	if runID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.GetRun(ctx, runID)
}

// DeleteRun removes a stored run.
func (s *ResultService) DeleteRun(ctx context.Context, runID string) error {
	if s.store == nil {
		return domain.ErrNotFound
	}
	if runID == "" {
		return domain.ErrInvalidInput
	}
	return s.store.DeleteRun(ctx, runID)
}

// Export writes a stored run into dir using the named format.
func (s *ResultService) Export(ctx context.Context, runID, format, dir string) ([]string, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
	result, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	files, err := exporter.Export(result, dir)
	if err != nil {
		return nil, fmt.Errorf("export run %s as %s: %w", runID, format, err)
	}
	return files, nil
}
