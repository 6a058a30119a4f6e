// Package domain defines the core business entities for billtopics.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Bill: An immutable legislative bill with sponsor and vote metadata
//   - NormalizedDocument: The token sequence derived from one Bill
//   - Topic: A cluster of bills with a ranked keyword signature
//   - AggregateRow: Per-topic counts along a grouping dimension
//   - CorrelationEntry: Shared-sponsor overlap between two topics
//   - Config: The immutable configuration passed through every stage
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
