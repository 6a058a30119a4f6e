package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// CSV file names written by CSVExporter.
const (
	TopicsFile       = "topics.csv"
	KeywordsFile     = "topic_keywords.csv"
	AssignmentsFile  = "assignments.csv"
	AggregatesFile   = "aggregates.csv"
	CorrelationsFile = "correlations.csv"
)

// Ensure CSVExporter implements the interface.
var _ driven.Exporter = (*CSVExporter)(nil)

// CSVExporter writes one CSV file per result table.
type CSVExporter struct{}

// NewCSV creates a CSV exporter.
func NewCSV() *CSVExporter {
	return &CSVExporter{}
}

// Format returns "csv".
func (e *CSVExporter) Format() string {
	return "csv"
}

// Export writes the five result tables into dir.
func (e *CSVExporter) Export(result *domain.RunResult, dir string) ([]string, error) {
	if result == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{TopicsFile, []string{"topic_id", "name", "size"}, topicRows(result)},
		{KeywordsFile, []string{"topic_id", "rank", "term", "weight"}, keywordRows(result)},
		{AssignmentsFile, []string{"bill_id", "topic_id"}, assignmentRows(result)},
		{AggregatesFile, []string{"topic_id", "dimension", "value", "count", "yea_sum", "nay_sum", "support_ratio"}, aggregateRows(result)},
		{CorrelationsFile, []string{"topic_a", "topic_b", "weight"}, correlationRows(result)},
	}

	files := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.name)
		if err := writeCSV(path, t.header, t.rows); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func topicRows(r *domain.RunResult) [][]string {
	rows := make([][]string, 0, len(r.Topics))
	for _, t := range r.Topics {
		rows = append(rows, []string{itoa(t.ID), t.Name, itoa(t.Size())})
	}
	return rows
}

func keywordRows(r *domain.RunResult) [][]string {
	var rows [][]string
	for _, t := range r.Topics {
		for rank, kw := range t.Keywords {
			rows = append(rows, []string{itoa(t.ID), itoa(rank + 1), kw.Term, ftoa(kw.Weight)})
		}
	}
	return rows
}

func assignmentRows(r *domain.RunResult) [][]string {
	rows := make([][]string, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		rows = append(rows, []string{a.BillID, itoa(a.TopicID)})
	}
	return rows
}

func aggregateRows(r *domain.RunResult) [][]string {
	rows := make([][]string, 0, len(r.Aggregates))
	for _, a := range r.Aggregates {
		rows = append(rows, []string{
			itoa(a.TopicID),
			a.Dimension.String(),
			a.Value,
			itoa(a.Count),
			itoa(a.YeaSum),
			itoa(a.NaySum),
			ftoa(a.SupportRatio()),
		})
	}
	return rows
}

func correlationRows(r *domain.RunResult) [][]string {
	rows := make([][]string, 0, len(r.Correlations))
	for _, c := range r.Correlations {
		rows = append(rows, []string{itoa(c.TopicA), itoa(c.TopicB), ftoa(c.Weight)})
	}
	return rows
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// ftoa uses the shortest representation that round-trips.
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
