package driven

import "context"

// Embedder generates a dense vector from a normalised token sequence.
//
// Implementations must be safe for concurrent use once fitted: the
// pipeline embeds documents from several goroutines at once.
//
// Implementations may include:
//   - Feature hashing (built-in, deterministic)
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type Embedder interface {
	// Embed generates a vector for the given tokens.
	// An empty token sequence yields a zero vector, not an error.
	Embed(ctx context.Context, tokens []string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// Name returns the provider and model, for logging and run metadata.
	Name() string

	// Close releases resources.
	Close() error
}

// CorpusFitter is implemented by embedders that need corpus statistics
// (for example document frequencies) before embedding.
// Fit is called once, before any Embed call, and must not be called concurrently.
type CorpusFitter interface {
	Fit(docs [][]string)
}

// Pinger is implemented by remote embedders that can validate connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
