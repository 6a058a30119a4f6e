package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/postprocessors/minlength"
	"github.com/custodia-labs/billtopics/internal/postprocessors/stopwords"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(minlength.Name, buildMinLength)
	r.Register(stopwords.Name, buildStopwords)
}

// DefaultOrder is the order in which the built-in filters run.
var DefaultOrder = []string{minlength.Name, stopwords.Name}

// PipelineFromConfig builds the standard token filter chain for a run.
func PipelineFromConfig(r *Registry, cfg domain.Config) (*Pipeline, error) {
	settings := map[string]map[string]any{
		minlength.Name: {"min_length": cfg.MinTokenLength},
		stopwords.Name: {"words": cfg.Stopwords},
	}

	p := NewPipeline()
	for _, name := range DefaultOrder {
		proc, err := r.Build(name, settings[name])
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		p.Add(proc)
	}
	return p, nil
}

// buildMinLength creates a length filter from generic config.
// Supported config keys:
//   - min_length (int): Shortest token kept, in runes (default: 3)
func buildMinLength(cfg map[string]any) (driven.TokenProcessor, error) {
	var opts []minlength.Option
	if cfg != nil {
		if n := getIntFromConfig(cfg, "min_length"); n > 0 {
			opts = append(opts, minlength.WithMinLength(n))
		}
	}
	return minlength.New(opts...), nil
}

// buildStopwords creates a stopword filter from generic config.
// Supported config keys:
//   - words ([]string or []any): Words to drop (default: built-in set)
func buildStopwords(cfg map[string]any) (driven.TokenProcessor, error) {
	if cfg == nil {
		return stopwords.New(domain.DefaultStopwords()), nil
	}
	raw, ok := cfg["words"]
	if !ok {
		return stopwords.New(domain.DefaultStopwords()), nil
	}
	words, err := getStringSliceFromConfig(raw)
	if err != nil {
		return nil, err
	}
	return stopwords.New(words), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getStringSliceFromConfig accepts both typed and decoded-any slices.
func getStringSliceFromConfig(val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("stopword %v is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("words must be a list of strings, got %T", val)
	}
}
