// Package openai embeds bill text with the OpenAI embeddings API or a
// compatible endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/embedding/remote"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Embedder implements the interfaces.
var (
	_ driven.Embedder = (*Embedder)(nil)
	_ driven.Pinger   = (*Embedder)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// fallbackDimensions is used for models missing from modelDimensions.
const fallbackDimensions = 1536

var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedder.
type Config struct {
	// APIKey is required.
	APIKey string

	// BaseURL can point at Azure OpenAI or another compatible API.
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions shortens text-embedding-3-* vectors; other models ignore it.
	Dimensions int

	// RequestsPerSecond throttles requests. Zero means unlimited.
	RequestsPerSecond float64
}

// Embedder sends each bill's token sequence to /embeddings.
type Embedder struct {
	client     *remote.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// New creates an OpenAI embedder, filling unset fields with defaults.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = fallbackDimensions
		if d, ok := modelDimensions[cfg.Model]; ok {
			dimensions = d
		}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)

	return &Embedder{
		client: remote.New(remote.Options{
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.Timeout,
			Header:            header,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

// Embed sends the tokens as space-joined text.
// An empty token sequence yields the zero vector without a request.
func (e *Embedder) Embed(ctx context.Context, tokens []string) ([]float32, error) {
	if len(tokens) == 0 {
		return make([]float32, e.dimensions), nil
	}

	req := embeddingRequest{Model: e.model, Input: []string{strings.Join(tokens, " ")}}
	if strings.HasPrefix(e.model, "text-embedding-3-") {
		req.Dimensions = e.dimensions
	}

	var resp embeddingResponse
	if err := e.client.PostJSON(ctx, "/embeddings", req, &resp); err != nil {
		return nil, fmt.Errorf("openai: %w", apiError(err))
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: no embedding returned")
	}

	vec, err := remote.Vector(resp.Data[0].Embedding, e.dimensions)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return vec, nil
}

// apiError replaces a JSON error body with its message.
func apiError(err error) error {
	var statusErr *remote.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	var body errorResponse
	if json.Unmarshal([]byte(statusErr.Body), &body) != nil || body.Error.Message == "" {
		return err
	}
	return &remote.StatusError{Code: statusErr.Code, Body: body.Error.Message}
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Name returns the provider and model.
func (e *Embedder) Name() string {
	return "openai/" + e.model
}

// Ping validates the API key against /models.
func (e *Embedder) Ping(ctx context.Context) error {
	if err := e.client.Get(ctx, "/models"); err != nil {
		return fmt.Errorf("openai: ping failed: %w", apiError(err))
	}
	return nil
}

// Close releases idle connections.
func (e *Embedder) Close() error {
	e.client.Close()
	return nil
}
