// Package query provides query text processing: tokenization and synonym lookup.
package query

import (
	"strings"
	"unicode/utf8"
)

// Tokenizer splits raw query text into deduplicated, length-bounded tokens.
type Tokenizer struct {
	maxQueryLength int
	maxTokens      int
}

// NewTokenizer creates a Tokenizer with the given bounds.
func NewTokenizer(maxQueryLength, maxTokens int) *Tokenizer {
	return &Tokenizer{maxQueryLength: maxQueryLength, maxTokens: maxTokens}
}

// Tokenize splits q into word tokens. Queries that are empty after trimming,
// or longer than the configured maximum, yield an empty slice; callers treat
// that as "no search to perform". Splitting happens on runs of whitespace,
// everything else (hyphens, plus signs, accented letters) passes through
// unchanged. Tokens are deduplicated case-insensitively keeping the
// first-seen casing and order, then capped at the configured maximum count.
func (t *Tokenizer) Tokenize(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" || utf8.RuneCountInString(q) > t.maxQueryLength {
		return nil
	}

	fields := strings.Fields(q)
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, f)
		if len(tokens) == t.maxTokens {
			break
		}
	}
	return tokens
}
