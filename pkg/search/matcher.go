package search

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

// ErrEmptyQuery is returned when a query has no tokens.
var ErrEmptyQuery = fmt.Errorf("search query must not be empty: %w", types.ErrValidation)

// fold normalizes s to NFC and lowercases it. A Caser is stateful, so each
// call builds its own.
func fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// PrepareTokens splits a query into lowercase tokens. Leading, trailing and
// repeated whitespace is ignored.
func PrepareTokens(query string) ([]string, error) {
	tokens := strings.Fields(fold(strings.TrimSpace(query)))
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}
	return tokens, nil
}

// PrepareTokensPtr is PrepareTokens for an optional query; nil is empty.
func PrepareTokensPtr(query *string) ([]string, error) {
	if query == nil {
		return nil, ErrEmptyQuery
	}
	return PrepareTokens(*query)
}

// Haystack returns the folded, space-joined text collected from entity.
func Haystack(entity any) string {
	return fold(strings.Join(Collect(entity), " "))
}

// MatchAll reports whether every token is a substring of the entity haystack.
// An empty token list matches nothing.
func MatchAll(entity any, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	return containsAll(Haystack(entity), tokens)
}

func containsAll(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// Matcher holds prepared tokens for repeated matching.
type Matcher struct {
	tokens []string
}

// NewMatcher prepares query. Returns ErrEmptyQuery when it has no tokens.
func NewMatcher(query string) (*Matcher, error) {
	tokens, err := PrepareTokens(query)
	if err != nil {
		return nil, err
	}
	return &Matcher{tokens: tokens}, nil
}

// Tokens returns a copy of the prepared tokens.
func (m *Matcher) Tokens() []string {
	return append([]string(nil), m.tokens...)
}

// Match reports whether entity contains every token.
func (m *Matcher) Match(entity any) bool {
	return MatchAll(entity, m.tokens)
}

// Filter returns the items matching query, in input order. No match yields an
// empty, non-nil slice.
func Filter[T any](items []T, query string) ([]T, error) {
	m, err := NewMatcher(query)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if m.Match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}
