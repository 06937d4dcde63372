package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ateliernoir/search/internal/models"
	"github.com/ateliernoir/search/internal/storage"
)

// SearchPredicate is the textual half of a listing query. FuzzyIDs is nil
// when fuzzy matching was skipped (query too short) and empty when it was
// attempted but found nothing; Exact holds the substring clauses to OR in,
// so an exact hit can surface a product the fuzzy scorer ranked below the
// cutoff.
type SearchPredicate struct {
	FuzzyIDs []string
	Total    int
	Exact    []storage.Condition
}

// Condition composes the predicate into one OR clause, or nil when the
// query was blank.
func (p *SearchPredicate) Condition() storage.Condition {
	clauses := make([]storage.Condition, 0, len(p.Exact)+1)
	if len(p.FuzzyIDs) > 0 {
		clauses = append(clauses, storage.In{Field: "id", Values: p.FuzzyIDs})
	}
	clauses = append(clauses, p.Exact...)
	return storage.NewOr(clauses...)
}

// BuildSearchPredicate decides how to search for q. Queries below the
// minimum meaningful length skip fuzzy matching entirely: trigram
// similarity on one or two characters produces too many false positives,
// so cheap substring containment on name and description wins there. At or
// above the minimum, fuzzy matching runs; its results carry the relevance
// semantics for name and description, so the substring clauses then cover
// only the structurally distinct fallbacks (exact-SKU lookups). When fuzzy
// found nothing, the substring clauses fall back to covering name and
// description directly.
func (s *Service) BuildSearchPredicate(ctx context.Context, q string, opts MatchOptions) *SearchPredicate {
	q = strings.TrimSpace(q)
	if q == "" || utf8.RuneCountInString(q) > s.cfg.MaxQueryLength {
		return &SearchPredicate{}
	}
	if utf8.RuneCountInString(q) < s.cfg.MinFuzzyQueryLength {
		return &SearchPredicate{Exact: s.exactConditions(q, true)}
	}

	match := s.FuzzyMatch(ctx, q, opts)
	return &SearchPredicate{
		FuzzyIDs: match.IDs,
		Total:    match.Total,
		Exact:    s.exactConditions(q, len(match.IDs) == 0),
	}
}

// exactConditions builds the substring clauses for q. When coverNameDesc is
// false the name/description clauses are omitted because fuzzy matching
// already scored those fields. Synonym variants widen the name clause so
// "band" still finds rings listed under their canonical term.
func (s *Service) exactConditions(q string, coverNameDesc bool) []storage.Condition {
	conds := make([]storage.Condition, 0, 4)
	if coverNameDesc {
		conds = append(conds,
			storage.Contains{Field: "name", Value: q},
			storage.Contains{Field: "description", Value: q},
		)
		for _, syn := range s.synonyms.SynonymsOf(q) {
			conds = append(conds, storage.Contains{Field: "name", Value: syn})
		}
	}
	conds = append(conds, storage.Contains{Field: "sku", Value: q})
	return conds
}

// BuildStructuralConditions turns listing filters into AND clauses, each
// filter contributing zero or one clause.
func BuildStructuralConditions(f *models.ProductFilters) []storage.Condition {
	if f == nil {
		return nil
	}
	var conds []storage.Condition
	if f.Status != "" {
		conds = append(conds, storage.Eq{Field: "status", Value: string(f.Status)})
	}
	if f.MinPriceCents != nil {
		conds = append(conds, storage.GTE{Field: "price_cents", Value: *f.MinPriceCents})
	}
	if f.MaxPriceCents != nil {
		conds = append(conds, storage.LTE{Field: "price_cents", Value: *f.MaxPriceCents})
	}
	if f.InStock != nil {
		if *f.InStock {
			conds = append(conds, storage.GT{Field: "stock", Value: 0})
		} else {
			conds = append(conds, storage.Eq{Field: "stock", Value: 0})
		}
	}
	if f.MinRating != nil {
		conds = append(conds, storage.GTE{Field: "rating", Value: *f.MinRating})
	}
	if f.Collection != "" {
		conds = append(conds, storage.InCollection{Name: f.Collection})
	}
	if f.CreatedAfter != nil {
		conds = append(conds, storage.GTE{Field: "created_at", Value: *f.CreatedAfter})
	}
	if f.CreatedBefore != nil {
		conds = append(conds, storage.LTE{Field: "created_at", Value: *f.CreatedBefore})
	}
	return conds
}

// SearchProducts serves the listing endpoint: structural filters AND the
// search predicate, paginated. Fuzzy degradation inside the predicate is
// silent; only the listing query itself can fail.
func (s *Service) SearchProducts(ctx context.Context, req *models.ProductSearchRequest) (*models.ProductPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	conds := BuildStructuralConditions(&req.Filters)
	pred := s.BuildSearchPredicate(ctx, req.Query, MatchOptions{Status: req.Filters.Status})
	if c := pred.Condition(); c != nil {
		conds = append(conds, c)
	}

	products, total, err := s.store.ListProducts(ctx, storage.NewAnd(conds...), req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*models.Product{}
	}
	return &models.ProductPage{Products: products, Total: total}, nil
}
