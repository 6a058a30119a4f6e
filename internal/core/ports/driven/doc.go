// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a pipeline run:
//
//   - Normaliser: Cleans and tokenises raw bill text
//   - TokenPipeline: Filters token sequences (min length, stopwords)
//   - Embedder: Maps token sequences to fixed-length vectors
//   - Clusterer: Assigns every document a topic id or the outlier id
//   - Labeler: Extracts ranked keyword signatures per topic
//   - Aggregator: Groups topic assignments along a dimension
//   - CorrelationBuilder: Computes topic co-occurrence weights
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ResultStore: Run persistence. Without it, results are only returned.
//   - CorpusFitter: Implemented by embedders that need corpus statistics.
//
// # Edge Interfaces
//
// Used by the CLI around a run rather than by the pipeline itself:
//
//   - BillSource: Loads a batch of bill records
//   - Exporter: Writes a run result in one file format
//   - ConfigStore: Flattened key/value configuration storage
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or analysis package
package driven
