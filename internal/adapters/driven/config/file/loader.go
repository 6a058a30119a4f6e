package file

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/config/values"
	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// EnvPrefix prefixes environment overrides: clustering.epsilon is read
// from BILLTOPICS_CLUSTERING_EPSILON.
const EnvPrefix = "BILLTOPICS_"

// Configuration keys.
const (
	KeyTargetTopicCount     = "target_topic_count"
	KeyMinTopicSize         = "min_topic_size"
	KeyKeywordCountPerTopic = "keyword_count_per_topic"
	KeyPeriodCutoffDate     = "period_cutoff_date"
	KeyRandomSeed           = "random_seed"
	KeyMinTokenLength       = "min_token_length"
	KeyStopwordSet          = "stopword_set"
	KeyExtraStopwords       = "extra_stopwords"
	KeyBoilerplatePatterns  = "boilerplate_patterns"
	KeyWorkers              = "workers"
	KeyCooccurrenceKey      = "cooccurrence_key"

	KeyEmbeddingProvider          = "embedding.provider"
	KeyEmbeddingDimensions        = "embedding.dimensions"
	KeyEmbeddingIDF               = "embedding.idf"
	KeyEmbeddingModel             = "embedding.model"
	KeyEmbeddingBaseURL           = "embedding.base_url"
	KeyEmbeddingAPIKey            = "embedding.api_key"
	KeyEmbeddingRequestsPerSecond = "embedding.requests_per_second"

	KeyClusteringReduction         = "clustering.reduction"
	KeyClusteringReducedDimensions = "clustering.reduced_dimensions"
	KeyClusteringMinSamples        = "clustering.min_samples"
	KeyClusteringEpsilon           = "clustering.epsilon"
	KeyClusteringEpsilonScale      = "clustering.epsilon_scale"
)

// LookupEnv reads an environment variable. os.LookupEnv satisfies it.
type LookupEnv func(key string) (string, bool)

// EnvKey returns the environment variable that overrides key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadConfig builds a validated run configuration from defaults, then the
// store, then environment overrides. A nil env disables overrides.
func LoadConfig(store driven.ConfigStore, env LookupEnv) (domain.Config, error) {
	if env == nil {
		env = func(string) (string, bool) { return "", false }
	}
	l := &loader{store: store, env: env}
	cfg := domain.DefaultConfig()

	l.readInt(KeyTargetTopicCount, &cfg.TargetTopicCount)
	l.readInt(KeyMinTopicSize, &cfg.MinTopicSize)
	l.readInt(KeyKeywordCountPerTopic, &cfg.KeywordCountPerTopic)
	l.readDate(KeyPeriodCutoffDate, &cfg.PeriodCutoffDate)
	l.readInt64(KeyRandomSeed, &cfg.RandomSeed)
	l.readInt(KeyMinTokenLength, &cfg.MinTokenLength)
	l.readStrings(KeyStopwordSet, &cfg.Stopwords)
	l.readStrings(KeyBoilerplatePatterns, &cfg.BoilerplatePatterns)
	l.readInt(KeyWorkers, &cfg.Workers)

	var extra []string
	l.readStrings(KeyExtraStopwords, &extra)
	stopwords := make([]string, 0, len(cfg.Stopwords)+len(extra))
	stopwords = append(stopwords, cfg.Stopwords...)
	stopwords = append(stopwords, extra...)
	cfg = cfg.WithStopwords(stopwords)

	var key string
	if l.readString(KeyCooccurrenceKey, &key) {
		cfg.CooccurrenceKey = domain.CooccurrenceKey(key)
	}

	var provider string
	if l.readString(KeyEmbeddingProvider, &provider) {
		cfg.Embedding.Provider = domain.EmbeddingProvider(provider)
	}
	l.readInt(KeyEmbeddingDimensions, &cfg.Embedding.Dimensions)
	l.readBool(KeyEmbeddingIDF, &cfg.Embedding.IDF)
	l.readString(KeyEmbeddingModel, &cfg.Embedding.Model)
	l.readString(KeyEmbeddingBaseURL, &cfg.Embedding.BaseURL)
	l.readString(KeyEmbeddingAPIKey, &cfg.Embedding.APIKey)
	l.readFloat(KeyEmbeddingRequestsPerSecond, &cfg.Embedding.RequestsPerSecond)
	if cfg.Embedding.APIKey == "" && cfg.Embedding.Provider == domain.EmbeddingProviderOpenAI {
		cfg.Embedding.APIKey, _ = env("OPENAI_API_KEY")
	}

	var reduction string
	if l.readString(KeyClusteringReduction, &reduction) {
		cfg.Clustering.Reduction = domain.ReductionMethod(reduction)
	}
	l.readInt(KeyClusteringReducedDimensions, &cfg.Clustering.ReducedDimensions)
	l.readInt(KeyClusteringMinSamples, &cfg.Clustering.MinSamples)
	l.readFloat(KeyClusteringEpsilon, &cfg.Clustering.Epsilon)
	l.readFloat(KeyClusteringEpsilonScale, &cfg.Clustering.EpsilonScale)

	if l.err != nil {
		return domain.Config{}, l.err
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// WriteDefaults stores every key of cfg so the file documents all options.
// The API key is never written.
func WriteDefaults(store driven.ConfigStore, cfg domain.Config) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyTargetTopicCount, cfg.TargetTopicCount},
		{KeyMinTopicSize, cfg.MinTopicSize},
		{KeyKeywordCountPerTopic, cfg.KeywordCountPerTopic},
		{KeyPeriodCutoffDate, values.LocalDate(cfg.PeriodCutoffDate)},
		{KeyRandomSeed, cfg.RandomSeed},
		{KeyMinTokenLength, cfg.MinTokenLength},
		{KeyStopwordSet, cfg.Stopwords},
		{KeyExtraStopwords, []string{}},
		{KeyBoilerplatePatterns, cfg.BoilerplatePatterns},
		{KeyWorkers, cfg.Workers},
		{KeyCooccurrenceKey, cfg.CooccurrenceKey.String()},
		{KeyEmbeddingProvider, cfg.Embedding.Provider.String()},
		{KeyEmbeddingDimensions, cfg.Embedding.Dimensions},
		{KeyEmbeddingIDF, cfg.Embedding.IDF},
		{KeyEmbeddingModel, cfg.Embedding.Model},
		{KeyEmbeddingBaseURL, cfg.Embedding.BaseURL},
		{KeyEmbeddingRequestsPerSecond, cfg.Embedding.RequestsPerSecond},
		{KeyClusteringReduction, cfg.Clustering.Reduction.String()},
		{KeyClusteringReducedDimensions, cfg.Clustering.ReducedDimensions},
		{KeyClusteringMinSamples, cfg.Clustering.MinSamples},
		{KeyClusteringEpsilon, cfg.Clustering.Epsilon},
		{KeyClusteringEpsilonScale, cfg.Clustering.EpsilonScale},
	}
	for _, v := range values {
		if err := store.Set(v.key, v.value); err != nil {
			return fmt.Errorf("writing %s: %w", v.key, err)
		}
	}
	return store.Save()
}

// loader reads typed values, keeping the first error.
// Each reader returns true when a value was found.
type loader struct {
	store driven.ConfigStore
	env   LookupEnv
	err   error
}

func (l *loader) fail(key, reason string) bool {
	if l.err == nil {
		l.err = &domain.ConfigurationError{Field: key, Reason: reason}
	}
	return false
}

func (l *loader) lookup(key string) (raw string, fromEnv bool, value any, found bool) {
	if raw, ok := l.env(EnvKey(key)); ok {
		return raw, true, nil, true
	}
	if l.store == nil {
		return "", false, nil, false
	}
	value, found = l.store.Get(key)
	return "", false, value, found
}

// read resolves key and converts it. Environment values are parsed with
// parseEnv; stored values are converted with fromStore.
func read[T any](l *loader, key, reason string, dst *T,
	parseEnv func(string) (T, bool), fromStore func(any) (T, bool)) bool {
	raw, fromEnv, value, found := l.lookup(key)
	if !found {
		return false
	}
	var (
		v  T
		ok bool
	)
	if fromEnv {
		v, ok = parseEnv(strings.TrimSpace(raw))
	} else {
		v, ok = fromStore(value)
	}
	if !ok {
		return l.fail(key, reason)
	}
	*dst = v
	return true
}

func (l *loader) readInt(key string, dst *int) bool {
	return read(l, key, "must be an integer", dst, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}, values.Int)
}

func (l *loader) readInt64(key string, dst *int64) bool {
	return read(l, key, "must be an integer", dst, func(s string) (int64, bool) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}, strictInt64)
}

func (l *loader) readFloat(key string, dst *float64) bool {
	return read(l, key, "must be a number", dst, func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}, values.Float)
}

func (l *loader) readBool(key string, dst *bool) bool {
	return read(l, key, "must be true or false", dst, func(s string) (bool, bool) {
		b, err := strconv.ParseBool(s)
		return b, err == nil
	}, values.Bool)
}

func (l *loader) readString(key string, dst *string) bool {
	return read(l, key, "must be a string", dst, func(s string) (string, bool) {
		return s, true
	}, values.String)
}

// readStrings reads a list; environment values are comma-separated.
func (l *loader) readStrings(key string, dst *[]string) bool {
	return read(l, key, "must be a list of strings", dst, func(s string) ([]string, bool) {
		var items []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, true
	}, values.Strings)
}

// readDate accepts a TOML local date, a TOML datetime or a YYYY-MM-DD string.
func (l *loader) readDate(key string, dst *time.Time) bool {
	return read(l, key, "must be a date (YYYY-MM-DD)", dst, func(s string) (time.Time, bool) {
		return values.Date(s)
	}, values.Date)
}

// strictInt64 rejects floats so a seed is never silently truncated.
func strictInt64(v any) (int64, bool) {
	if _, isFloat := v.(float64); isFloat {
		return 0, false
	}
	return values.Int64(v)
}
