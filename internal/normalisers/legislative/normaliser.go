// Package legislative normalises bill text into topic-bearing tokens.
package legislative

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser strips legislative boilerplate and tokenises bill text.
// It holds only compiled, read-only state and is safe for concurrent use.
type Normaliser struct {
	boilerplate []*regexp.Regexp
	filters     driven.TokenPipeline
}

// New creates a normaliser from boilerplate patterns and a token filter chain.
// Patterns are matched case-insensitively. A nil filter chain keeps every token.
func New(patterns []string, filters driven.TokenPipeline) (*Normaliser, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile boilerplate pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Normaliser{boilerplate: compiled, filters: filters}, nil
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "legislative"
}

// Normalise converts the bill's raw text to its token sequence.
func (n *Normaliser) Normalise(ctx context.Context, bill domain.Bill) (domain.NormalizedDocument, error) {
	doc := domain.NormalizedDocument{BillID: bill.ID}

	tokens := n.Tokenize(bill.RawText)
	if len(tokens) == 0 || n.filters == nil {
		doc.Tokens = tokens
		return doc, nil
	}

	filtered, err := n.filters.Process(ctx, tokens)
	if err != nil {
		return domain.NormalizedDocument{}, fmt.Errorf("filter tokens of %s: %w", bill.ID, err)
	}
	doc.Tokens = filtered
	return doc, nil
}

// Tokenize strips markup, folds, cleans and splits text without applying
// the filter chain.
func (n *Normaliser) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}
	if hasMarkup(text) {
		text = stripMarkup(text)
	}

	text = strings.ToLower(norm.NFKC.String(text))
	for _, re := range n.boilerplate {
		text = re.ReplaceAllString(text, " ")
	}

	return strings.FieldsFunc(joinWordPunctuation(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// joinWordPunctuation removes hyphens and apostrophes between two letters,
// so "zero-emission" and "state's" stay single tokens.
func joinWordPunctuation(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if isJoiner(r) && i > 0 && i < len(runes)-1 &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isJoiner(r rune) bool {
	switch r {
	case '-', '\'', '’', '‐', '‑':
		return true
	default:
		return false
	}
}
