// Package clustering groups document vectors into topics.
//
// The clusterer reduces dimensionality (PCA or a seeded random projection),
// runs DBSCAN in the reduced space, discards clusters below the minimum topic
// size and merges the closest remaining clusters until the target topic count
// is met. Every step depends only on input order and the configured seed.
package clustering

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/logger"
)

// Ensure Clusterer implements the interface.
var _ driven.Clusterer = (*Clusterer)(nil)

// Stats describes what happened during one clustering pass.
type Stats struct {
	// Epsilon is the DBSCAN radius used.
	Epsilon float64

	// MinSamples is the DBSCAN core threshold used.
	MinSamples int

	// ReducedDimensions is the dimension clustering ran in.
	ReducedDimensions int

	// EmptyDocuments counts zero vectors sent straight to the outlier bucket.
	EmptyDocuments int

	// RawClusters is the number of DBSCAN clusters before filtering.
	RawClusters int

	// UndersizedMembers counts points moved to outlier by the size filter.
	UndersizedMembers int

	// Merges is the number of merge steps performed.
	Merges int

	// Topics is the final number of non-outlier topics.
	Topics int
}

// Clusterer assigns each vector a topic id or domain.OutlierTopicID.
type Clusterer struct {
	cfg domain.Config
}

// New creates a clusterer for the given run configuration.
func New(cfg domain.Config) *Clusterer {
	return &Clusterer{cfg: cfg}
}

// Cluster assigns a topic id to each vector, in input order.
func (c *Clusterer) Cluster(ctx context.Context, vectors [][]float32) ([]int, error) {
	assignments, _, err := c.ClusterWithStats(ctx, vectors)
	return assignments, err
}

// ClusterWithStats is Cluster plus diagnostics.
func (c *Clusterer) ClusterWithStats(ctx context.Context, vectors [][]float32) ([]int, Stats, error) {
	stats := Stats{MinSamples: c.cfg.EffectiveMinSamples()}

	assignments := make([]int, len(vectors))
	for i := range assignments {
		assignments[i] = domain.OutlierTopicID
	}

	rows, index, err := nonZeroRows(vectors)
	if err != nil {
		return nil, stats, err
	}
	stats.EmptyDocuments = len(vectors) - len(index)
	if len(index) < 2 {
		return nil, stats, &domain.InsufficientTopicsError{Found: 0}
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	k := c.cfg.Clustering.ReducedDimensions
	reduced, err := reduce(rows, k, c.cfg.Clustering.Reduction, c.cfg.RandomSeed)
	if err != nil {
		return nil, stats, fmt.Errorf("reduce: %w", err)
	}
	points := denseRows(reduced)
	stats.ReducedDimensions = len(points[0])

	eps := c.cfg.Clustering.Epsilon
	if eps == 0 {
		eps = estimateEpsilon(points, stats.MinSamples-1, c.cfg.Clustering.EpsilonScale)
	}
	stats.Epsilon = eps

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	labels := dbscan(points, eps, stats.MinSamples)
	stats.RawClusters = countClusters(labels)

	groups, dropped := newGroups(labels, points, c.cfg.MinTopicSize)
	stats.UndersizedMembers = dropped
	groups, stats.Merges = mergeToTarget(groups, points, c.cfg.TargetTopicCount)
	stats.Topics = len(groups)

	logger.Debug("clustering: eps=%.4g min_samples=%d raw=%d undersized=%d merges=%d topics=%d",
		stats.Epsilon, stats.MinSamples, stats.RawClusters, stats.UndersizedMembers, stats.Merges, stats.Topics)

	if len(groups) < 2 {
		return nil, stats, &domain.InsufficientTopicsError{Found: len(groups)}
	}

	for _, g := range groups {
		for _, m := range g.members {
			assignments[index[m]] = g.id
		}
	}
	return assignments, stats, nil
}

// nonZeroRows copies the non-zero vectors into a matrix and returns their original indices.
func nonZeroRows(vectors [][]float32) (*mat.Dense, []int, error) {
	if len(vectors) == 0 {
		return nil, nil, nil
	}
	dim := len(vectors[0])
	var index []int
	var data []float64
	for i, v := range vectors {
		if len(v) != dim {
			return nil, nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				domain.ErrInvalidInput, i, len(v), dim)
		}
		if isZero(v) {
			continue
		}
		index = append(index, i)
		for _, x := range v {
			data = append(data, float64(x))
		}
	}
	if len(index) == 0 || dim == 0 {
		return nil, nil, nil
	}
	return mat.NewDense(len(index), dim, data), index, nil
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func denseRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}

func countClusters(labels []int) int {
	maxLabel := noise
	for _, l := range labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return maxLabel + 1
}
