package domain

import "time"

// SkippedRecord describes an input record rejected during validation.
type SkippedRecord struct {
	Index  int
	BillID string
	Reason string
}

// RunResult is the complete, internally consistent output of one pipeline run.
type RunResult struct {
	// RunID uniquely identifies this run.
	RunID string

	StartedAt  time.Time
	FinishedAt time.Time

	// Config is the configuration the run used.
	Config Config

	// BillCount is the number of accepted bills.
	BillCount int

	// Topics lists the non-outlier topics ordered by ID.
	Topics []Topic

	// OutlierCount is the number of bills assigned to OutlierTopicID.
	OutlierCount int

	// Assignments maps every accepted bill to a topic, in input order.
	Assignments []Assignment

	// Aggregates holds rows for every dimension, ordered by dimension, topic, value.
	Aggregates []AggregateRow

	// Correlations lists topic pairs ordered by (TopicA, TopicB).
	Correlations []CorrelationEntry

	// Skipped lists records rejected by validation.
	Skipped []SkippedRecord
}

// AggregatesFor returns the rows of a single dimension.
func (r *RunResult) AggregatesFor(kind DimensionKind) []AggregateRow {
	var rows []AggregateRow
	for _, row := range r.Aggregates {
		if row.Dimension == kind {
			rows = append(rows, row)
		}
	}
	return rows
}

// Summary returns the list view of the run.
func (r *RunResult) Summary() RunSummary {
	return RunSummary{
		RunID:        r.RunID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		BillCount:    r.BillCount,
		TopicCount:   len(r.Topics),
		OutlierCount: r.OutlierCount,
		SkippedCount: len(r.Skipped),
		RandomSeed:   r.Config.RandomSeed,
	}
}

// RunSummary is a compact description of a stored run.
type RunSummary struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	BillCount    int
	TopicCount   int
	OutlierCount int
	SkippedCount int
	RandomSeed   int64
}
