package driven

import "context"

// TokenProcessor transforms a token sequence.
// Processors are chained in a pipeline (e.g., length filtering, stopword removal).
type TokenProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes tokens and returns the transformed tokens.
	Process(ctx context.Context, tokens []string) ([]string, error)
}

// TokenPipeline chains multiple TokenProcessors.
type TokenPipeline interface {
	// Process runs the tokens through all processors in order.
	Process(ctx context.Context, tokens []string) ([]string, error)
}
