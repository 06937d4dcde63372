// Package storage defines the record store contract and its Postgres and
// SQLite implementations.
package storage

import (
	"context"
	"time"

	"github.com/ateliernoir/search/internal/models"
)

// MatchRow is one scored candidate returned by a similarity query. Total
// carries the query-wide match count and is identical on every row of one
// execution.
type MatchRow struct {
	ID    string
	Score float64
	Total int
}

// VocabularyHit is the closest known vocabulary word for a misspelled token.
type VocabularyHit struct {
	Word       string
	Source     models.VocabularySource
	Similarity float64
}

// SimilarityOptions tune one similarity search session. Threshold and
// Timeout are applied session-locally and must not outlive the transaction.
type SimilarityOptions struct {
	Threshold float64
	Timeout   time.Duration
	Limit     int
	Status    models.ProductStatus
}

// TermOptions tune one vocabulary lookup session.
type TermOptions struct {
	Threshold float64
	Timeout   time.Duration
}

// Store is the record store consumed by the search service.
type Store interface {
	// SimilaritySearch scores candidates against the full query across
	// weighted fields, keeping only candidates where every token clears
	// the threshold on at least one field, and returns the top rows by
	// descending score.
	SimilaritySearch(ctx context.Context, query string, tokens []string, opts SimilarityOptions) ([]MatchRow, error)

	// ClosestTerm returns the single closest vocabulary word above the
	// threshold, or nil when nothing clears it.
	ClosestTerm(ctx context.Context, word string, opts TermOptions) (*VocabularyHit, error)

	// FetchByIDs returns full records for the given IDs in no particular
	// order. IDs with no record are simply absent from the result.
	FetchByIDs(ctx context.Context, ids []string) ([]*models.Product, error)

	// GetProduct returns one record by ID.
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// UpsertProduct inserts or updates a record, assigning an ID when empty.
	UpsertProduct(ctx context.Context, p *models.Product) error

	// ListProducts returns one page of records matching cond (nil means
	// no constraint) plus the total match count.
	ListProducts(ctx context.Context, cond Condition, offset, limit int) ([]*models.Product, int, error)

	// RefreshVocabulary rebuilds the spelling-correction vocabulary from
	// the current catalog (product names and attribute values).
	RefreshVocabulary(ctx context.Context) error

	Close() error
}
