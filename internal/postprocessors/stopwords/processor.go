// Package stopwords provides a token filter that drops stopwords.
package stopwords

import (
	"context"
)

// Name is the registry name of this processor.
const Name = "stopwords"

// Processor removes tokens found in a fixed word set.
// It implements the TokenProcessor interface.
type Processor struct {
	words map[string]struct{}
}

// New creates a stopword filter. Words are matched exactly, so callers
// pass them lowercased to match normalised tokens.
func New(words []string) *Processor {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return &Processor{words: set}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Len returns the number of stopwords.
func (p *Processor) Len() int {
	return len(p.words)
}

// Contains reports whether word is a stopword.
func (p *Processor) Contains(word string) bool {
	_, ok := p.words[word]
	return ok
}

// Process returns the tokens that are not stopwords, in order.
func (p *Processor) Process(_ context.Context, tokens []string) ([]string, error) {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if !p.Contains(tok) {
			out = append(out, tok)
		}
	}
	return out, nil
}
