package search

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ateliernoir/search/internal/models"
)

// QuickSearch serves the storefront's inline search box: a small set of
// products in relevance order, plus a spelling suggestion when the match
// count is too low for the results to feel healthy. The record fetch and
// the suggestion lookup are independent and run concurrently; a failed
// suggestion never blocks product results. Total mirrors the matcher's
// count, not the number of records that survived the fetch.
func (s *Service) QuickSearch(ctx context.Context, q string, status models.ProductStatus) *models.QuickSearchResult {
	result := &models.QuickSearchResult{Products: []*models.Product{}}

	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < s.cfg.MinQuickSearchLength {
		return result
	}

	match := s.FuzzyMatch(ctx, q, MatchOptions{
		Limit:  s.cfg.QuickSearchLimit,
		Status: status,
	})
	result.Total = match.Total

	var wg sync.WaitGroup

	if len(match.IDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.Products = s.fetchOrdered(ctx, match.IDs)
		}()
	}

	if len(match.IDs) < s.cfg.SuggestionMinResults {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.Suggestion = s.Suggest(ctx, q)
		}()
	}

	wg.Wait()
	return result
}

// fetchOrdered bulk-fetches records for ids and re-imposes the relevance
// order, which the fetch does not preserve. IDs that no longer resolve to
// a record (gone between match and fetch) are silently skipped.
func (s *Service) fetchOrdered(ctx context.Context, ids []string) []*models.Product {
	products := failSoft(s.logger, "record_fetch", []*models.Product{},
		func() ([]*models.Product, error) {
			return s.store.FetchByIDs(ctx, ids)
		})

	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
