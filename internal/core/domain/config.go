package domain

import (
	"regexp"
	"sort"
	"time"
)

// Default configuration values.
const (
	DefaultTargetTopicCount     = 12
	DefaultMinTopicSize         = 10
	DefaultKeywordCountPerTopic = 10
	DefaultRandomSeed           = 42
	DefaultMinTokenLength       = 3
	DefaultEmbeddingDimensions  = 512
	DefaultReducedDimensions    = 5
	DefaultEpsilonScale         = 1.5
)

// DefaultPeriodCutoff is the Inflation Reduction Act signing date.
var DefaultPeriodCutoff = time.Date(2022, time.August, 16, 0, 0, 0, 0, time.UTC)

// Config is the immutable configuration of a pipeline run.
// It is passed by value through every stage; no stage mutates it.
type Config struct {
	// TargetTopicCount caps the number of non-outlier topics.
	TargetTopicCount int

	// MinTopicSize is the member count below which a cluster becomes outlier.
	MinTopicSize int

	// KeywordCountPerTopic is the signature length.
	KeywordCountPerTopic int

	// PeriodCutoffDate splits bills into pre and post buckets.
	PeriodCutoffDate time.Time

	// RandomSeed makes every seeded step reproducible.
	RandomSeed int64

	// MinTokenLength drops shorter tokens.
	MinTokenLength int

	// Stopwords is the sorted stopword set.
	Stopwords []string

	// BoilerplatePatterns are regular expressions stripped from raw text.
	BoilerplatePatterns []string

	// Workers bounds the embedding fan-out. Zero means one per CPU.
	Workers int

	// CooccurrenceKey selects the correlation definition.
	CooccurrenceKey CooccurrenceKey

	Embedding  EmbeddingSettings
	Clustering ClusteringSettings
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		TargetTopicCount:     DefaultTargetTopicCount,
		MinTopicSize:         DefaultMinTopicSize,
		KeywordCountPerTopic: DefaultKeywordCountPerTopic,
		PeriodCutoffDate:     DefaultPeriodCutoff,
		RandomSeed:           DefaultRandomSeed,
		MinTokenLength:       DefaultMinTokenLength,
		Stopwords:            DefaultStopwords(),
		BoilerplatePatterns:  DefaultBoilerplatePatterns(),
		CooccurrenceKey:      CooccurrenceSponsor,
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingProviderHashing,
			Dimensions: DefaultEmbeddingDimensions,
		},
		Clustering: ClusteringSettings{
			Reduction:         ReductionPCA,
			ReducedDimensions: DefaultReducedDimensions,
			EpsilonScale:      DefaultEpsilonScale,
		},
	}
}

// WithStopwords returns a copy of c using the given stopwords, sorted and de-duplicated.
func (c Config) WithStopwords(words []string) Config {
	seen := make(map[string]bool, len(words))
	set := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		set = append(set, w)
	}
	sort.Strings(set)
	c.Stopwords = set
	return c
}

// EffectiveMinSamples returns the DBSCAN core threshold, derived from MinTopicSize when unset.
func (c Config) EffectiveMinSamples() int {
	if c.Clustering.MinSamples > 0 {
		return c.Clustering.MinSamples
	}
	n := c.MinTopicSize / 2
	if n < 2 {
		n = 2
	}
	if n > 10 {
		n = 10
	}
	return n
}

// Validate checks every field range before any processing starts.
//
//nolint:gocyclo // Flat list of independent range checks
func (c Config) Validate() error {
	if c.TargetTopicCount < 2 {
		return &ConfigurationError{Field: "target_topic_count", Reason: "must be at least 2"}
	}
	if c.MinTopicSize < 1 {
		return &ConfigurationError{Field: "min_topic_size", Reason: "must be at least 1"}
	}
	if c.KeywordCountPerTopic < 1 {
		return &ConfigurationError{Field: "keyword_count_per_topic", Reason: "must be at least 1"}
	}
	if c.PeriodCutoffDate.IsZero() {
		return &ConfigurationError{Field: "period_cutoff_date", Reason: "is required"}
	}
	if c.MinTokenLength < 1 {
		return &ConfigurationError{Field: "min_token_length", Reason: "must be at least 1"}
	}
	if c.Workers < 0 {
		return &ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	if !c.CooccurrenceKey.IsValid() {
		return &ConfigurationError{Field: "cooccurrence_key", Reason: "must be sponsor or state"}
	}
	for _, p := range c.BoilerplatePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return &ConfigurationError{Field: "boilerplate_patterns", Reason: err.Error()}
		}
	}
	if !c.Embedding.Provider.IsValid() {
		return &ConfigurationError{Field: "embedding.provider", Reason: "is not recognised"}
	}
	if c.Embedding.Provider == EmbeddingProviderHashing && c.Embedding.Dimensions < 2 {
		return &ConfigurationError{Field: "embedding.dimensions", Reason: "must be at least 2"}
	}
	if c.Embedding.Provider.RequiresAPIKey() && c.Embedding.APIKey == "" {
		return &ConfigurationError{Field: "embedding.api_key", Reason: "is required for " + c.Embedding.Provider.String()}
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return &ConfigurationError{Field: "embedding.requests_per_second", Reason: "must not be negative"}
	}
	if !c.Clustering.Reduction.IsValid() {
		return &ConfigurationError{Field: "clustering.reduction", Reason: "must be pca or random"}
	}
	if c.Clustering.ReducedDimensions < 1 {
		return &ConfigurationError{Field: "clustering.reduced_dimensions", Reason: "must be at least 1"}
	}
	if c.Clustering.MinSamples < 0 {
		return &ConfigurationError{Field: "clustering.min_samples", Reason: "must not be negative"}
	}
	if c.Clustering.Epsilon < 0 {
		return &ConfigurationError{Field: "clustering.epsilon", Reason: "must not be negative"}
	}
	if c.Clustering.Epsilon == 0 && c.Clustering.EpsilonScale <= 0 {
		return &ConfigurationError{Field: "clustering.epsilon_scale", Reason: "must be positive"}
	}
	return nil
}
