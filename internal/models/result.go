package models

// VocabularySource identifies which corpus produced a spelling correction.
type VocabularySource string

const (
	SourceProduct   VocabularySource = "product"
	SourceAttribute VocabularySource = "attribute"
)

// MatchResult is the fuzzy matcher's output: product IDs ordered by
// descending relevance, plus the total match count shared by the whole
// query execution. Constructed fresh per query and never mutated.
type MatchResult struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// Suggestion is a corrected search phrase. Similarity and Source belong to
// the single best-scoring corrected word, not an average over all of them.
type Suggestion struct {
	Query      string           `json:"query"`
	Similarity float64          `json:"similarity"`
	Source     VocabularySource `json:"source"`
}

// QuickSearchResult is the inline-search payload: fetched products in
// relevance order, an optional spelling suggestion, and the matcher's
// total count (which can exceed len(Products) under fetch misses).
type QuickSearchResult struct {
	Products   []*Product  `json:"products"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
	Total      int         `json:"total"`
}

// ProductPage is one page of a filtered listing.
type ProductPage struct {
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
}
