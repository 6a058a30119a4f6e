// Package ai provides factory functions for creating embedding adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/billtopics/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/billtopics/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbedder creates the embedder selected by settings.
// The seed salts deterministic embedders.
func CreateEmbedder(settings domain.EmbeddingSettings, seed int64) (driven.Embedder, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	switch settings.Provider {
	case domain.EmbeddingProviderHashing:
		return hashing.New(hashing.Config{
			Dimensions: settings.Dimensions,
			Seed:       seed,
			IDF:        settings.IDF,
		}), nil

	case domain.EmbeddingProviderOllama:
		return ollamaembed.New(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.EmbeddingProviderOpenAI:
		return openaiembed.New(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbedder creates an embedder and, for remote providers,
// validates connectivity before any bill is embedded.
func CreateAndValidateEmbedder(ctx context.Context, settings domain.EmbeddingSettings, seed int64) (driven.Embedder, error) {
	emb, err := CreateEmbedder(settings, seed)
	if err != nil {
		return nil, err
	}

	pinger, ok := emb.(driven.Pinger)
	if !ok {
		return emb, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pinger.Ping(pingCtx); err != nil {
		emb.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return emb, nil
}
