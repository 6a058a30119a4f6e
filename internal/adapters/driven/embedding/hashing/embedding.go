// Package hashing provides a deterministic feature-hashing embedder.
package hashing

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Embedder implements the interfaces.
var (
	_ driven.Embedder     = (*Embedder)(nil)
	_ driven.CorpusFitter = (*Embedder)(nil)
)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 512

// Config holds configuration for the hashing embedder.
type Config struct {
	// Dimensions is the vector size (default: 512).
	Dimensions int

	// Seed salts the hash so different seeds give different collisions.
	Seed int64

	// IDF enables smoothed inverse document frequency weighting.
	// Requires Fit before Embed.
	IDF bool
}

// Embedder maps tokens to a signed hashed bag of words.
// Term weights are sublinear (1 + ln tf), optionally scaled by IDF,
// and the vector is L2-normalised. Output is bit-reproducible on every
// platform because terms are accumulated in sorted order.
type Embedder struct {
	dimensions int
	salt       [8]byte
	useIDF     bool

	// idf is written by Fit and read-only afterwards.
	idf        map[string]float64
	defaultIDF float64
}

// New creates a new hashing embedder.
func New(cfg Config) *Embedder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	e := &Embedder{
		dimensions: cfg.Dimensions,
		useIDF:     cfg.IDF,
		defaultIDF: 1,
	}
	binary.LittleEndian.PutUint64(e.salt[:], uint64(cfg.Seed))
	return e
}

// Fit records document frequencies for IDF weighting.
// It is a no-op when IDF is disabled.
func (e *Embedder) Fit(docs [][]string) {
	if !e.useIDF {
		return
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, tok := range doc {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	n := float64(len(docs))
	e.idf = make(map[string]float64, len(df))
	for term, count := range df {
		e.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	// Unseen terms get the weight of a term seen in no document.
	e.defaultIDF = math.Log(1+n) + 1
}

// Embed generates the hashed vector for tokens.
// An empty token sequence yields the zero vector.
func (e *Embedder) Embed(ctx context.Context, tokens []string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dimensions)
	if len(tokens) == 0 {
		return vec, nil
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	acc := make([]float64, e.dimensions)
	for _, term := range terms {
		idx, sign := e.bucket(term)
		w := 1 + math.Log(float64(counts[term]))
		if e.useIDF {
			w *= e.weight(term)
		}
		acc[idx] += sign * w
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// bucket returns the vector index and sign for a term.
func (e *Embedder) bucket(term string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write(e.salt[:])
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()

	sign := 1.0
	if sum>>63 == 1 {
		sign = -1
	}
	return int(sum % uint64(e.dimensions)), sign
}

func (e *Embedder) weight(term string) float64 {
	if w, ok := e.idf[term]; ok {
		return w
	}
	return e.defaultIDF
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Name returns the embedder name.
func (e *Embedder) Name() string {
	if e.useIDF {
		return fmt.Sprintf("hashing/%d+idf", e.dimensions)
	}
	return fmt.Sprintf("hashing/%d", e.dimensions)
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}
