package search

import (
	"context"
	"testing"
	"time"

	"github.com/ateliernoir/search/internal/models"
	"github.com/ateliernoir/search/internal/storage"
)

func containsField(conds []storage.Condition, field string) bool {
	for _, c := range conds {
		if sub, ok := c.(storage.Contains); ok && sub.Field == field {
			return true
		}
	}
	return false
}

func TestBuildSearchPredicate_BlankQuery(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	pred := svc.BuildSearchPredicate(context.Background(), "  ", MatchOptions{})
	if pred.FuzzyIDs != nil {
		t.Errorf("blank query: FuzzyIDs = %v, want nil", pred.FuzzyIDs)
	}
	if len(pred.Exact) != 0 {
		t.Errorf("blank query: Exact = %v, want empty", pred.Exact)
	}
	if pred.Condition() != nil {
		t.Error("blank query must compose to a nil condition")
	}
}

func TestBuildSearchPredicate_ShortQueryFallback(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	pred := svc.BuildSearchPredicate(context.Background(), "or", MatchOptions{})
	if pred.FuzzyIDs != nil {
		t.Errorf("short query: FuzzyIDs = %v, want nil (fuzzy skipped)", pred.FuzzyIDs)
	}
	if store.simCalls != 0 {
		t.Error("short query must not reach the similarity store")
	}
	if !containsField(pred.Exact, "name") || !containsField(pred.Exact, "description") {
		t.Errorf("short query must fall back to name/description substring clauses, got %v", pred.Exact)
	}
}

func TestBuildSearchPredicate_FuzzyBranchExcludesNameDesc(t *testing.T) {
	store := &fakeStore{simRows: []storage.MatchRow{
		{ID: "p1", Score: 2.0, Total: 1},
	}}
	svc := newTestService(store)

	pred := svc.BuildSearchPredicate(context.Background(), "collier", MatchOptions{})
	if len(pred.FuzzyIDs) != 1 || pred.FuzzyIDs[0] != "p1" {
		t.Fatalf("FuzzyIDs = %v, want [p1]", pred.FuzzyIDs)
	}
	if containsField(pred.Exact, "name") || containsField(pred.Exact, "description") {
		t.Errorf("fuzzy already covers name/description, exact clauses must not, got %v", pred.Exact)
	}
	if !containsField(pred.Exact, "sku") {
		t.Errorf("exact SKU fallback missing from %v", pred.Exact)
	}
}

func TestBuildSearchPredicate_EmptyFuzzyFallsBackToNameDesc(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	pred := svc.BuildSearchPredicate(context.Background(), "xyzxyz", MatchOptions{})
	if pred.FuzzyIDs == nil {
		t.Fatal("fuzzy was attempted: FuzzyIDs must be empty, not nil")
	}
	if len(pred.FuzzyIDs) != 0 {
		t.Fatalf("FuzzyIDs = %v, want empty", pred.FuzzyIDs)
	}
	if !containsField(pred.Exact, "name") || !containsField(pred.Exact, "description") {
		t.Errorf("empty fuzzy result must re-cover name/description, got %v", pred.Exact)
	}
}

func TestBuildSearchPredicate_SynonymsWidenFallback(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	// "ring" has synonyms; when the fallback branch covers name/description,
	// the name clause is widened with the term's variants.
	pred := svc.BuildSearchPredicate(context.Background(), "ring", MatchOptions{})
	found := false
	for _, c := range pred.Exact {
		if sub, ok := c.(storage.Contains); ok && sub.Field == "name" && sub.Value == "band" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a name clause for synonym %q, got %v", "band", pred.Exact)
	}
}

func TestSearchPredicate_Composition(t *testing.T) {
	withIDs := &SearchPredicate{
		FuzzyIDs: []string{"p1", "p2"},
		Exact:    []storage.Condition{storage.Contains{Field: "sku", Value: "ab"}},
	}
	cond := withIDs.Condition()
	or, ok := cond.(storage.Or)
	if !ok {
		t.Fatalf("composition with ids = %T, want Or", cond)
	}
	in, ok := or.Conds[0].(storage.In)
	if !ok || in.Field != "id" || len(in.Values) != 2 {
		t.Errorf("first OR branch should be id membership, got %+v", or.Conds[0])
	}

	emptyIDs := &SearchPredicate{
		FuzzyIDs: []string{},
		Exact:    []storage.Condition{storage.Contains{Field: "name", Value: "x"}},
	}
	if _, ok := emptyIDs.Condition().(storage.Contains); !ok {
		t.Errorf("empty fuzzy ids must rely on exact clauses alone, got %T", emptyIDs.Condition())
	}
}

func TestBuildStructuralConditions(t *testing.T) {
	minPrice := int64(1000)
	maxPrice := int64(5000)
	inStock := true
	minRating := 4.0
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	conds := BuildStructuralConditions(&models.ProductFilters{
		Status:        models.StatusPublished,
		MinPriceCents: &minPrice,
		MaxPriceCents: &maxPrice,
		InStock:       &inStock,
		MinRating:     &minRating,
		Collection:    "summer",
		CreatedAfter:  &after,
	})
	if len(conds) != 7 {
		t.Fatalf("expected 7 clauses (one per filter), got %d: %v", len(conds), conds)
	}

	if got := BuildStructuralConditions(&models.ProductFilters{}); len(got) != 0 {
		t.Errorf("no filters must yield no clauses, got %v", got)
	}
}

func TestSearchProducts_ComposesListingQuery(t *testing.T) {
	store := &fakeStore{
		simRows:      []storage.MatchRow{{ID: "p1", Score: 1.0, Total: 1}},
		listProducts: []*models.Product{{ID: "p1", Name: "Collier"}},
		listTotal:    1,
	}
	svc := newTestService(store)

	page, err := svc.SearchProducts(context.Background(), &models.ProductSearchRequest{
		Query:   "collier",
		Filters: models.ProductFilters{Status: models.StatusPublished},
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Products) != 1 {
		t.Errorf("page = %+v, want 1 product", page)
	}
	if store.lastCond == nil {
		t.Fatal("listing query must receive a composed condition")
	}
	if _, ok := store.lastCond.(storage.And); !ok {
		t.Errorf("structural filters AND search predicate expected, got %T", store.lastCond)
	}
}
