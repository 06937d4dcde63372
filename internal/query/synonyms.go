package query

import (
	"sort"
	"strings"
)

// SynonymTable is an immutable bidirectional mapping from a term to its
// interchangeable variants. Built once at startup; safe for unsynchronized
// concurrent reads.
type SynonymTable struct {
	index map[string][]string
}

// NewSynonymTable builds a table from groups of mutually interchangeable
// single-word terms. Terms are lowercased; a term appearing in several
// groups ends up with the deduplicated union of all its co-members. Terms
// on the exclusion list are dropped entirely (they collide with function
// words of the catalog language and would pollute expansion).
func NewSynonymTable(groups [][]string, exclusions []string) *SynonymTable {
	excluded := make(map[string]struct{}, len(exclusions))
	for _, e := range exclusions {
		excluded[strings.ToLower(e)] = struct{}{}
	}

	members := make(map[string]map[string]struct{})
	for _, group := range groups {
		terms := make([]string, 0, len(group))
		for _, raw := range group {
			term := strings.ToLower(strings.TrimSpace(raw))
			if term == "" {
				continue
			}
			if _, skip := excluded[term]; skip {
				continue
			}
			terms = append(terms, term)
		}
		for _, term := range terms {
			set, ok := members[term]
			if !ok {
				set = make(map[string]struct{})
				members[term] = set
			}
			for _, other := range terms {
				if other != term {
					set[other] = struct{}{}
				}
			}
		}
	}

	index := make(map[string][]string, len(members))
	for term, set := range members {
		variants := make([]string, 0, len(set))
		for v := range set {
			variants = append(variants, v)
		}
		sort.Strings(variants)
		index[term] = variants
	}
	return &SynonymTable{index: index}
}

// SynonymsOf returns the variants of term, never including term itself.
// Lookup is case-insensitive; unknown terms yield an empty slice.
func (t *SynonymTable) SynonymsOf(term string) []string {
	return t.index[strings.ToLower(term)]
}

// Len returns the number of distinct terms in the table.
func (t *SynonymTable) Len() int {
	return len(t.index)
}
