// Package minlength provides a token filter that drops short tokens.
package minlength

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// Name is the registry name of this processor.
const Name = "minlength"

// Processor drops tokens shorter than a minimum rune count.
// It implements the TokenProcessor interface.
type Processor struct {
	minLength int
}

// Option configures the processor.
type Option func(*Processor)

// WithMinLength sets the shortest token kept.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minLength = n
		}
	}
}

// New creates a new length filter with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{minLength: domain.DefaultMinTokenLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// MinLength returns the configured threshold.
func (p *Processor) MinLength() int {
	return p.minLength
}

// Process returns the tokens with at least minLength runes, in order.
func (p *Processor) Process(_ context.Context, tokens []string) ([]string, error) {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) >= p.minLength {
			out = append(out, tok)
		}
	}
	return out, nil
}
