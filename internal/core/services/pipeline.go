package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/core/ports/driving"
	"github.com/custodia-labs/billtopics/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.TopicPipeline = (*Pipeline)(nil)

// Pipeline stages, in execution order.
const (
	StageValidate  = "validate"
	StageNormalise = "normalise"
	StageEmbed     = "embed"
	StageCluster   = "cluster"
	StageLabel     = "label"
	StageAggregate = "aggregate"
	StageCorrelate = "correlate"
	StagePersist   = "persist"
)

// Components are the stage implementations a Pipeline runs.
// Store is optional; when nil, results are returned but not persisted.
type Components struct {
	Normaliser driven.Normaliser
	Embedder   driven.Embedder
	Clusterer  driven.Clusterer
	Labeler    driven.Labeler
	Aggregator driven.Aggregator
	Correlator driven.CorrelationBuilder
	Store      driven.ResultStore
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides how run ids are generated.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(p *Pipeline) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// Pipeline runs the staged topic analysis over one batch of bills.
// Each stage completes for the whole corpus before the next begins;
// only embedding fans out across workers.
type Pipeline struct {
	cfg        domain.Config
	components Components
	now        func() time.Time
	newID      func() string
}

// NewPipeline creates a pipeline. The configuration is validated here,
// before any record is processed.
func NewPipeline(cfg domain.Config, components Components, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if components.Normaliser == nil || components.Embedder == nil || components.Clusterer == nil ||
		components.Labeler == nil || components.Aggregator == nil || components.Correlator == nil {
		return nil, fmt.Errorf("%w: pipeline component missing", domain.ErrInvalidInput)
	}

	p := &Pipeline{
		cfg:        cfg,
		components: components,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the run configuration.
func (p *Pipeline) Config() domain.Config {
	return p.cfg
}

// Run processes the batch. Invalid records are skipped and reported;
// any structural failure aborts the run with a *domain.RunError.
//
//nolint:gocyclo // Orchestration function with necessary sequential stages
func (p *Pipeline) Run(ctx context.Context, records []domain.BillRecord) (*domain.RunResult, error) {
	started := p.now()

	logger.Section("Validate")
	bills, skipped := validateRecords(records)
	logger.Info("Accepted %d of %d records", len(bills), len(records))

	fail := func(stage string, err error) (*domain.RunResult, error) {
		return nil, &domain.RunError{Stage: stage, Skipped: len(skipped), Err: err}
	}

	logger.Section("Normalise")
	docs, err := p.normalise(ctx, bills)
	if err != nil {
		return fail(StageNormalise, err)
	}

	logger.Section("Embed")
	vectors, err := p.embed(ctx, docs)
	if err != nil {
		return fail(StageEmbed, err)
	}

	logger.Section("Cluster")
	assignments, err := p.components.Clusterer.Cluster(ctx, vectors)
	if err != nil {
		return fail(StageCluster, err)
	}
	if err := p.checkAssignments(assignments, len(bills)); err != nil {
		return fail(StageCluster, err)
	}

	logger.Section("Label")
	topics, err := p.components.Labeler.Label(ctx, docs, assignments)
	if err != nil {
		return fail(StageLabel, err)
	}
	if err := p.checkTopics(topics); err != nil {
		return fail(StageLabel, err)
	}
	for _, t := range topics {
		logger.Info("Topic %s: %d bills", t.Name, t.Size())
	}

	logger.Section("Aggregate")
	aggregates, err := p.aggregate(bills, assignments)
	if err != nil {
		return fail(StageAggregate, err)
	}

	logger.Section("Correlate")
	correlations, err := p.components.Correlator.Build(bills, assignments)
	if err != nil {
		return fail(StageCorrelate, err)
	}
	logger.Info("%d correlated topic pairs", len(correlations))

	result := &domain.RunResult{
		RunID:        p.newID(),
		StartedAt:    started,
		FinishedAt:   p.now(),
		Config:       p.cfg,
		BillCount:    len(bills),
		Topics:       topics,
		Assignments:  make([]domain.Assignment, len(bills)),
		Aggregates:   aggregates,
		Correlations: correlations,
		Skipped:      skipped,
	}
	for i, b := range bills {
		result.Assignments[i] = domain.Assignment{BillID: b.ID, TopicID: assignments[i]}
		if assignments[i] == domain.OutlierTopicID {
			result.OutlierCount++
		}
	}

	if p.components.Store != nil {
		logger.Section("Persist")
		if err := p.components.Store.SaveRun(ctx, result); err != nil {
			return fail(StagePersist, fmt.Errorf("save run: %w", err))
		}
		logger.Info("Saved run %s", result.RunID)
	}

	return result, nil
}

// validateRecords converts records to bills, skipping invalid and duplicate ones.
func validateRecords(records []domain.BillRecord) ([]domain.Bill, []domain.SkippedRecord) {
	bills := make([]domain.Bill, 0, len(records))
	var skipped []domain.SkippedRecord
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		bill, err := rec.ToBill(i)
		if err == nil && seen[bill.ID] {
			err = &domain.InputValidationError{Index: i, BillID: bill.ID, Reason: "duplicate bill_id"}
		}
		if err != nil {
			var verr *domain.InputValidationError
			if errors.As(err, &verr) {
				skipped = append(skipped, domain.SkippedRecord{Index: verr.Index, BillID: verr.BillID, Reason: verr.Reason})
			} else {
				skipped = append(skipped, domain.SkippedRecord{Index: i, Reason: err.Error()})
			}
			logger.Warn("Skipping record: %v", err)
			continue
		}
		seen[bill.ID] = true
		bills = append(bills, bill)
	}
	return bills, skipped
}

func (p *Pipeline) normalise(ctx context.Context, bills []domain.Bill) ([]domain.NormalizedDocument, error) {
	docs := make([]domain.NormalizedDocument, len(bills))
	empty := 0
	for i, b := range bills {
		doc, err := p.components.Normaliser.Normalise(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("normalise bill %s: %w", b.ID, err)
		}
		if doc.IsEmpty() {
			empty++
		}
		docs[i] = doc
	}
	if empty > 0 {
		logger.Info("%d bills have no tokens and will be outliers", empty)
	}
	return docs, nil
}

// embed fits the embedder on the corpus, then embeds every document in parallel.
// Each worker writes only its own slot; the first failure cancels the rest.
func (p *Pipeline) embed(ctx context.Context, docs []domain.NormalizedDocument) ([][]float32, error) {
	emb := p.components.Embedder

	if fitter, ok := emb.(driven.CorpusFitter); ok {
		corpus := make([][]string, len(docs))
		for i, d := range docs {
			corpus[i] = d.Tokens
		}
		fitter.Fit(corpus)
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger.Debug("Embedding %d documents with %s on %d workers", len(docs), emb.Name(), workers)

	vectors := make([][]float32, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range docs {
		g.Go(func() error {
			vec, err := emb.Embed(gctx, docs[i].Tokens)
			if err != nil {
				return fmt.Errorf("embed bill %s: %w", docs[i].BillID, err)
			}
			if len(vec) != emb.Dimensions() {
				return &domain.InternalConsistencyError{
					Detail: fmt.Sprintf("bill %s embedded to %d dimensions, want %d", docs[i].BillID, len(vec), emb.Dimensions()),
				}
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// checkAssignments verifies the clusterer honoured its contract.
func (p *Pipeline) checkAssignments(assignments []int, n int) error {
	if len(assignments) != n {
		return &domain.InternalConsistencyError{
			Detail: fmt.Sprintf("%d assignments for %d bills", len(assignments), n),
		}
	}
	sizes := make(map[int]int)
	for _, a := range assignments {
		sizes[a]++
	}
	topics := 0
	for id, size := range sizes {
		if id == domain.OutlierTopicID {
			continue
		}
		topics++
		if id < 0 || id >= p.cfg.TargetTopicCount {
			return &domain.InternalConsistencyError{Detail: fmt.Sprintf("topic id %d out of range", id)}
		}
		if size < p.cfg.MinTopicSize {
			return &domain.InternalConsistencyError{
				Detail: fmt.Sprintf("topic %d has %d members, minimum is %d", id, size, p.cfg.MinTopicSize),
			}
		}
	}
	if topics < 2 {
		return &domain.InsufficientTopicsError{Found: topics}
	}
	return nil
}

// checkTopics verifies topics are dense, ordered and sized in descending order.
func (p *Pipeline) checkTopics(topics []domain.Topic) error {
	for i, t := range topics {
		if t.ID != i {
			return &domain.InternalConsistencyError{Detail: fmt.Sprintf("topic at position %d has id %d", i, t.ID)}
		}
		if t.Size() == 0 {
			return &domain.InternalConsistencyError{Detail: fmt.Sprintf("topic %d has no members", t.ID)}
		}
		if i > 0 && t.Size() > topics[i-1].Size() {
			return &domain.InternalConsistencyError{
				Detail: fmt.Sprintf("topic %d is larger than topic %d", t.ID, topics[i-1].ID),
			}
		}
	}
	return nil
}

func (p *Pipeline) aggregate(bills []domain.Bill, assignments []int) ([]domain.AggregateRow, error) {
	dims := []domain.Dimension{
		domain.PartyDimension(),
		domain.StateDimension(),
		domain.PeriodDimension(p.cfg.PeriodCutoffDate),
	}
	var all []domain.AggregateRow
	for _, dim := range dims {
		rows, err := p.components.Aggregator.Aggregate(bills, assignments, dim)
		if err != nil {
			return nil, fmt.Errorf("aggregate by %s: %w", dim.Kind, err)
		}
		all = append(all, rows...)
	}
	return all, nil
}
