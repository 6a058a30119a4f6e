package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

// SaveRun stores a completed run and all its rows in one transaction.
// The embedding API key is never written.
func (s *resultStore) SaveRun(ctx context.Context, result *domain.RunResult) error {
	if result == nil || result.RunID == "" {
		return domain.ErrInvalidInput
	}

	cfg := result.Config
	cfg.Embedding.APIKey = ""
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	summary := result.Summary()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, bill_count, topic_count,
			outlier_count, skipped_count, random_seed, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, summary.RunID, summary.StartedAt.UTC(), summary.FinishedAt.UTC(), summary.BillCount,
		summary.TopicCount, summary.OutlierCount, summary.SkippedCount, summary.RandomSeed,
		string(configJSON))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if err := saveTopics(ctx, tx, result); err != nil {
		return err
	}
	if err := saveAssignments(ctx, tx, result); err != nil {
		return err
	}
	if err := saveAggregates(ctx, tx, result); err != nil {
		return err
	}
	if err := saveCorrelations(ctx, tx, result); err != nil {
		return err
	}
	if err := saveSkipped(ctx, tx, result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func saveTopics(ctx context.Context, tx *sql.Tx, result *domain.RunResult) error {
	topicStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO topics (run_id, topic_id, name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer topicStmt.Close()

	kwStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO topic_keywords (run_id, topic_id, rank, term, weight) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer kwStmt.Close()

	for _, t := range result.Topics {
		if _, err := topicStmt.ExecContext(ctx, result.RunID, t.ID, t.Name); err != nil {
			return fmt.Errorf("saving topic %d: %w", t.ID, err)
		}
		for rank, kw := range t.Keywords {
			if _, err := kwStmt.ExecContext(ctx, result.RunID, t.ID, rank, kw.Term, kw.Weight); err != nil {
				return fmt.Errorf("saving keyword %q of topic %d: %w", kw.Term, t.ID, err)
			}
		}
	}
	return nil
}

func saveAssignments(ctx context.Context, tx *sql.Tx, result *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO assignments (run_id, position, bill_id, topic_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, a := range result.Assignments {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, a.BillID, a.TopicID); err != nil {
			return fmt.Errorf("saving assignment of %s: %w", a.BillID, err)
		}
	}
	return nil
}

func saveAggregates(ctx context.Context, tx *sql.Tx, result *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO aggregates (run_id, position, topic_id, dimension, value, count, yea_sum, nay_sum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range result.Aggregates {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, row.TopicID, string(row.Dimension),
			row.Value, row.Count, row.YeaSum, row.NaySum); err != nil {
			return fmt.Errorf("saving aggregate row: %w", err)
		}
	}
	return nil
}

func saveCorrelations(ctx context.Context, tx *sql.Tx, result *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO correlations (run_id, topic_a, topic_b, weight) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range result.Correlations {
		if _, err := stmt.ExecContext(ctx, result.RunID, c.TopicA, c.TopicB, c.Weight); err != nil {
			return fmt.Errorf("saving correlation %d-%d: %w", c.TopicA, c.TopicB, err)
		}
	}
	return nil
}

func saveSkipped(ctx context.Context, tx *sql.Tx, result *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO skipped_records (run_id, position, record_index, bill_id, reason)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, sk := range result.Skipped {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, sk.Index, sk.BillID, sk.Reason); err != nil {
			return fmt.Errorf("saving skipped record %d: %w", sk.Index, err)
		}
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *resultStore) GetRun(ctx context.Context, runID string) (*domain.RunResult, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, bill_count, outlier_count, config
		FROM runs WHERE id = ?
	`, runID)

	var result domain.RunResult
	var configJSON string
	if err := row.Scan(&result.RunID, &result.StartedAt, &result.FinishedAt,
		&result.BillCount, &result.OutlierCount, &configJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	result.StartedAt = result.StartedAt.UTC()
	result.FinishedAt = result.FinishedAt.UTC()

	if err := json.Unmarshal([]byte(configJSON), &result.Config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	loaders := []func(context.Context, *domain.RunResult) error{
		s.loadAssignments,
		s.loadTopics,
		s.loadAggregates,
		s.loadCorrelations,
		s.loadSkipped,
	}
	for _, load := range loaders {
		if err := load(ctx, &result); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func (s *resultStore) loadAssignments(ctx context.Context, result *domain.RunResult) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT bill_id, topic_id FROM assignments WHERE run_id = ? ORDER BY position
	`, result.RunID)
	if err != nil {
		return fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.BillID, &a.TopicID); err != nil {
			return fmt.Errorf("scanning assignment: %w", err)
		}
		result.Assignments = append(result.Assignments, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating assignments: %w", err)
	}
	return nil
}

// loadTopics must run after loadAssignments: members are rebuilt from assignments.
func (s *resultStore) loadTopics(ctx context.Context, result *domain.RunResult) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT topic_id, name FROM topics WHERE run_id = ? ORDER BY topic_id
	`, result.RunID)
	if err != nil {
		return fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	index := make(map[int]int)
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return fmt.Errorf("scanning topic: %w", err)
		}
		index[t.ID] = len(result.Topics)
		result.Topics = append(result.Topics, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating topics: %w", err)
	}

	kwRows, err := s.store.db.QueryContext(ctx, `
		SELECT topic_id, term, weight FROM topic_keywords WHERE run_id = ? ORDER BY topic_id, rank
	`, result.RunID)
	if err != nil {
		return fmt.Errorf("querying keywords: %w", err)
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var id int
		var kw domain.Keyword
		if err := kwRows.Scan(&id, &kw.Term, &kw.Weight); err != nil {
			return fmt.Errorf("scanning keyword: %w", err)
		}
		if i, ok := index[id]; ok {
			result.Topics[i].Keywords = append(result.Topics[i].Keywords, kw)
		}
	}
	if err := kwRows.Err(); err != nil {
		return fmt.Errorf("iterating keywords: %w", err)
	}

	for _, a := range result.Assignments {
		if i, ok := index[a.TopicID]; ok {
			result.Topics[i].Members = append(result.Topics[i].Members, a.BillID)
		}
	}
	return nil
}

func (s *resultStore) loadAggregates(ctx context.Context, result *domain.RunResult) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT topic_id, dimension, value, count, yea_sum, nay_sum
		FROM aggregates WHERE run_id = ? ORDER BY position
	`, result.RunID)
	if err != nil {
		return fmt.Errorf("querying aggregates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.AggregateRow
		var dim string
		if err := rows.Scan(&r.TopicID, &dim, &r.Value, &r.Count, &r.YeaSum, &r.NaySum); err != nil {
			return fmt.Errorf("scanning aggregate: %w", err)
		}
		r.Dimension = domain.DimensionKind(dim)
		result.Aggregates = append(result.Aggregates, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating aggregates: %w", err)
	}
	return nil
}

func (s *resultStore) loadCorrelations(ctx context.Context, result *domain.RunResult) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT topic_a, topic_b, weight FROM correlations WHERE run_id = ? ORDER BY topic_a, topic_b
	`, result.RunID)
	if err != nil {
		return fmt.Errorf("querying correlations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.CorrelationEntry
		if err := rows.Scan(&c.TopicA, &c.TopicB, &c.Weight); err != nil {
			return fmt.Errorf("scanning correlation: %w", err)
		}
		result.Correlations = append(result.Correlations, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating correlations: %w", err)
	}
	return nil
}

func (s *resultStore) loadSkipped(ctx context.Context, result *domain.RunResult) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT record_index, bill_id, reason FROM skipped_records WHERE run_id = ? ORDER BY position
	`, result.RunID)
	if err != nil {
		return fmt.Errorf("querying skipped records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sk domain.SkippedRecord
		if err := rows.Scan(&sk.Index, &sk.BillID, &sk.Reason); err != nil {
			return fmt.Errorf("scanning skipped record: %w", err)
		}
		result.Skipped = append(result.Skipped, sk)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating skipped records: %w", err)
	}
	return nil
}

// ListRuns returns summaries of all stored runs, newest first.
func (s *resultStore) ListRuns(ctx context.Context) ([]domain.RunSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, bill_count, topic_count, outlier_count, skipped_count, random_seed
		FROM runs ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.BillCount, &r.TopicCount,
			&r.OutlierCount, &r.SkippedCount, &r.RandomSeed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = r.StartedAt.UTC()
		r.FinishedAt = r.FinishedAt.UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run; its rows cascade.
func (s *resultStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
