package driven

import "github.com/custodia-labs/billtopics/internal/core/domain"

// Exporter writes a run to an exchange format.
// Field names and order are stable across runs.
type Exporter interface {
	// Format returns the exporter's format name (e.g., "csv", "json").
	Format() string

	// Export writes the run into dir and returns the files written.
	Export(result *domain.RunResult, dir string) ([]string, error)
}
