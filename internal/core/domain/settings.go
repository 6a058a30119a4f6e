package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the service that turns tokens into vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHashing is the built-in feature-hashing embedder.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the embedding provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderHashing, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsDeterministic returns true if vectors are bit-reproducible across platforms.
// Remote model numerics can drift between hosts and model versions.
func (p EmbeddingProvider) IsDeterministic() bool {
	return p == EmbeddingProviderHashing
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHashing:
		return "Feature hashing (built-in, deterministic)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Dimensions is the vector size. Required for hashing, optional for remote models.
	Dimensions int

	// IDF enables inverse document frequency weighting (hashing only).
	IDF bool

	// Model is the embedding model name (remote providers).
	Model string

	// BaseURL is the API endpoint (remote providers).
	BaseURL string

	// APIKey is the API key (OpenAI).
	APIKey string

	// RequestsPerSecond throttles remote providers. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ReductionMethod selects the dimensionality reduction used before clustering.
type ReductionMethod string

// Available reduction methods.
const (
	// ReductionPCA projects onto the leading principal components.
	ReductionPCA ReductionMethod = "pca"

	// ReductionRandom uses a seeded Gaussian random projection.
	ReductionRandom ReductionMethod = "random"
)

// IsValid returns true if the reduction method is recognised.
func (m ReductionMethod) IsValid() bool {
	return m == ReductionPCA || m == ReductionRandom
}

// String returns the string representation.
func (m ReductionMethod) String() string {
	return string(m)
}

// ClusteringSettings tunes the topic clusterer.
type ClusteringSettings struct {
	// Reduction is the dimensionality reduction method.
	Reduction ReductionMethod

	// ReducedDimensions is the target dimension after reduction.
	ReducedDimensions int

	// MinSamples is the DBSCAN core point threshold. Zero derives it from MinTopicSize.
	MinSamples int

	// Epsilon is the DBSCAN neighbourhood radius. Zero estimates it from the data.
	Epsilon float64

	// EpsilonScale multiplies the estimated radius.
	EpsilonScale float64
}
