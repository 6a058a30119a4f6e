// Package ollama embeds bill text with a local Ollama model.
package ollama

import (
	"context"
	"fmt"
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
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text
)

// Config holds configuration for the Ollama embedder.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// RequestsPerSecond throttles requests. Zero means unlimited.
	RequestsPerSecond float64
}

// Embedder sends each bill's token sequence to /api/embeddings.
type Embedder struct {
	client     *remote.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// New creates an Ollama embedder, filling unset fields with defaults.
func New(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &Embedder{
		client: remote.New(remote.Options{
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed sends the tokens as space-joined text.
// An empty token sequence yields the zero vector without a request.
func (e *Embedder) Embed(ctx context.Context, tokens []string) ([]float32, error) {
	if len(tokens) == 0 {
		return make([]float32, e.dimensions), nil
	}

	var resp embedResponse
	req := embedRequest{Model: e.model, Prompt: strings.Join(tokens, " ")}
	if err := e.client.PostJSON(ctx, "/api/embeddings", req, &resp); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	vec, err := remote.Vector(resp.Embedding, e.dimensions)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Name returns the provider and model.
func (e *Embedder) Name() string {
	return "ollama/" + e.model
}

// Ping checks the server answers on /api/tags.
func (e *Embedder) Ping(ctx context.Context) error {
	if err := e.client.Get(ctx, "/api/tags"); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (e *Embedder) Close() error {
	e.client.Close()
	return nil
}
