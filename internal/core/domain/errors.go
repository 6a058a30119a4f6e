package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, format or processor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrInputValidation indicates a single bill record is malformed.
	// The record is skipped; the run continues.
	ErrInputValidation = errors.New("input validation failed")

	// ErrInsufficientTopics indicates clustering produced fewer than two topics.
	ErrInsufficientTopics = errors.New("insufficient topics")

	// ErrInternalConsistency indicates a broken pipeline invariant.
	ErrInternalConsistency = errors.New("internal consistency violated")

	// ErrConfiguration indicates configuration values are out of range.
	ErrConfiguration = errors.New("invalid configuration")
)

// InputValidationError describes a rejected bill record.
type InputValidationError struct {
	// Index is the record position in the input batch.
	Index int

	// BillID is the record's bill id, empty when missing.
	BillID string

	// Reason explains why the record was rejected.
	Reason string
}

func (e *InputValidationError) Error() string {
	if e.BillID == "" {
		return fmt.Sprintf("%s: record %d: %s", ErrInputValidation, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: record %d (%s): %s", ErrInputValidation, e.Index, e.BillID, e.Reason)
}

// Unwrap returns ErrInputValidation.
func (e *InputValidationError) Unwrap() error {
	return ErrInputValidation
}

// InsufficientTopicsError reports how many topics clustering found.
type InsufficientTopicsError struct {
	// Found is the number of non-outlier topics.
	Found int
}

func (e *InsufficientTopicsError) Error() string {
	return fmt.Sprintf("%s: found %d non-outlier topics, need at least 2", ErrInsufficientTopics, e.Found)
}

// Unwrap returns ErrInsufficientTopics.
func (e *InsufficientTopicsError) Unwrap() error {
	return ErrInsufficientTopics
}

// InternalConsistencyError reports a violated invariant between stages.
type InternalConsistencyError struct {
	Detail string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInternalConsistency, e.Detail)
}

// Unwrap returns ErrInternalConsistency.
func (e *InternalConsistencyError) Unwrap() error {
	return ErrInternalConsistency
}

// ConfigurationError reports an out-of-range configuration field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// RunError is returned when a pipeline run aborts.
// It carries the failing stage and the number of records skipped before the failure.
type RunError struct {
	Stage   string
	Skipped int
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed at %s (%d records skipped): %v", e.Stage, e.Skipped, e.Err)
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.Err
}
