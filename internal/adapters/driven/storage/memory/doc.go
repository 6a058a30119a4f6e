// Package memory provides in-memory implementations of driven ports.
// Nothing is persisted; contents are lost when the process exits.
package memory
