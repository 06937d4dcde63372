package storage

import (
	"strings"
	"unicode"
)

// TrigramSimilarity scores how alike two strings are on a 0..1 scale using
// trigram set overlap, mirroring the semantics of Postgres pg_trgm: words
// are lowercased, padded, and decomposed into three-character shingles, and
// the score is shared trigrams over the union. Used by the SQLite store,
// where it is registered as the SQL function similarity().
func TrigramSimilarity(a, b string) float64 {
	ta := trigramSet(a)
	tb := trigramSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(strings.ToLower(s)) {
		// pg_trgm pads each word with two leading and one trailing space.
		padded := "  " + word + " "
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			set[string(runes[i:i+3])] = struct{}{}
		}
	}
	return set
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
