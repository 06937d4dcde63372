package search

import (
	"context"
	"strings"

	"github.com/ateliernoir/search/internal/models"
	"github.com/ateliernoir/search/internal/storage"
)

// MatchOptions tune one fuzzy match call. Zero values fall back to the
// configured defaults; the statement timeout is fixed and not overridable.
type MatchOptions struct {
	Threshold float64
	Limit     int
	Status    models.ProductStatus
}

// FuzzyMatch finds products approximately matching q, ordered by descending
// relevance, plus the total match count. Queries that do not survive
// tokenization return the zero result without touching the store. Store
// errors and timeouts also degrade to the zero result: a timeout means
// "too expensive, skip it" for this request, never a retry.
func (s *Service) FuzzyMatch(ctx context.Context, q string, opts MatchOptions) *models.MatchResult {
	empty := &models.MatchResult{IDs: []string{}}

	q = strings.TrimSpace(q)
	tokens := s.tok.Tokenize(q)
	if len(tokens) == 0 {
		return empty
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = s.cfg.SimilarityThreshold
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.MatchLimit
	}

	return failSoft(s.logger, "fuzzy_match", empty, func() (*models.MatchResult, error) {
		rows, err := s.store.SimilaritySearch(ctx, q, tokens, storage.SimilarityOptions{
			Threshold: threshold,
			Timeout:   s.cfg.MatchTimeout(),
			Limit:     limit,
			Status:    opts.Status,
		})
		if err != nil {
			return nil, err
		}
		result := &models.MatchResult{IDs: make([]string, 0, len(rows))}
		for _, row := range rows {
			result.IDs = append(result.IDs, row.ID)
			result.Total = row.Total
		}
		return result, nil
	})
}
