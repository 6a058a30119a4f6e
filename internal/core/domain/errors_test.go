package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrInputValidation", ErrInputValidation},
		{"ErrInsufficientTopics", ErrInsufficientTopics},
		{"ErrInternalConsistency", ErrInternalConsistency},
		{"ErrConfiguration", ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"input validation", &InputValidationError{Index: 3, Reason: "missing bill_id"}, ErrInputValidation},
		{"insufficient topics", &InsufficientTopicsError{Found: 1}, ErrInsufficientTopics},
		{"internal consistency", &InternalConsistencyError{Detail: "topic 2 has no members"}, ErrInternalConsistency},
		{"configuration", &ConfigurationError{Field: "min_topic_size", Reason: "must be at least 1"}, ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.False(t, errors.Is(tt.err, ErrNotFound))
		})
	}
}

func TestInputValidationError_Message(t *testing.T) {
	err := &InputValidationError{Index: 4, BillID: "CA-AB-1", Reason: "missing raw_text"}
	assert.Equal(t, "input validation failed: record 4 (CA-AB-1): missing raw_text", err.Error())

	err = &InputValidationError{Index: 0, Reason: "missing bill_id"}
	assert.Equal(t, "input validation failed: record 0: missing bill_id", err.Error())
}

func TestInsufficientTopicsError_Message(t *testing.T) {
	err := &InsufficientTopicsError{Found: 1}
	assert.Contains(t, err.Error(), "found 1 non-outlier topics")
}

func TestRunError_WrapsKind(t *testing.T) {
	err := &RunError{Stage: "cluster", Skipped: 2, Err: &InsufficientTopicsError{Found: 0}}

	assert.True(t, errors.Is(err, ErrInsufficientTopics))
	assert.Contains(t, err.Error(), "cluster")
	assert.Contains(t, err.Error(), "2 records skipped")

	var ite *InsufficientTopicsError
	assert.True(t, errors.As(err, &ite))
	assert.Equal(t, 0, ite.Found)
}
