// Package sqlite provides a SQLite-based implementation of driven.ResultStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A run is saved in one transaction:
// the run row plus its topics, keywords, assignments, aggregates, correlations
// and skipped records. Deleting a run cascades to all of them.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory, named NNN_name.up.sql and applied in order.
//
// # Data Location
//
// By default, the database is stored at ~/.billtopics/data/results.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
