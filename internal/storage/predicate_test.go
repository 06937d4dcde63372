package storage

import (
	"strings"
	"testing"
)

func TestRenderCondition_NilMatchesEverything(t *testing.T) {
	sql, args, err := RenderCondition(nil, DialectPostgres)
	if err != nil {
		t.Fatal(err)
	}
	if sql != "TRUE" || len(args) != 0 {
		t.Errorf("nil condition = %q %v, want TRUE with no args", sql, args)
	}
}

func TestRenderCondition_Postgres(t *testing.T) {
	cond := NewAnd(
		Eq{Field: "status", Value: "published"},
		NewOr(
			In{Field: "id", Values: []string{"a", "b"}},
			Contains{Field: "sku", Value: "AB-12"},
		),
		GTE{Field: "price_cents", Value: int64(1000)},
	)
	sql, args, err := RenderCondition(cond, DialectPostgres)
	if err != nil {
		t.Fatal(err)
	}
	want := `(p.status = $1 AND (p.id = ANY($2) OR p.sku ILIKE $3 ESCAPE '\') AND p.price_cents >= $4)`
	if sql != want {
		t.Errorf("sql = %s, want %s", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v, want 4", args)
	}
	if args[2] != `%AB-12%` {
		t.Errorf("substring pattern = %v", args[2])
	}
}

func TestRenderCondition_SQLitePlaceholders(t *testing.T) {
	cond := NewAnd(
		Eq{Field: "status", Value: "published"},
		In{Field: "id", Values: []string{"a", "b", "c"}},
	)
	sql, args, err := RenderCondition(cond, DialectSQLite)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sql, "$") {
		t.Errorf("sqlite rendering must use ? placeholders: %s", sql)
	}
	if got := strings.Count(sql, "?"); got != 4 {
		t.Errorf("placeholder count = %d, want 4: %s", got, sql)
	}
	if len(args) != 4 {
		t.Errorf("args = %v, want 4 (one per placeholder)", args)
	}
}

func TestRenderCondition_ContainsEscapesWildcards(t *testing.T) {
	sql, args, err := RenderCondition(Contains{Field: "name", Value: "100%_pure"}, DialectPostgres)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql, "ILIKE") {
		t.Errorf("expected ILIKE clause, got %s", sql)
	}
	if args[0] != `%100\%\_pure%` {
		t.Errorf("wildcards must be escaped, got %v", args[0])
	}
}

func TestRenderCondition_EmptyInNeverMatches(t *testing.T) {
	sql, _, err := RenderCondition(In{Field: "id", Values: nil}, DialectPostgres)
	if err != nil {
		t.Fatal(err)
	}
	if sql != "FALSE" {
		t.Errorf("empty membership = %q, want FALSE", sql)
	}
}

func TestRenderCondition_UnknownFieldRejected(t *testing.T) {
	if _, _, err := RenderCondition(Eq{Field: "password", Value: "x"}, DialectPostgres); err == nil {
		t.Error("unknown field must be rejected, not interpolated")
	}
}

func TestRenderCondition_InCollection(t *testing.T) {
	sql, args, err := RenderCondition(InCollection{Name: "summer"}, DialectSQLite)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql, "EXISTS") || !strings.Contains(sql, "product_collections") {
		t.Errorf("collection membership should render as EXISTS subquery: %s", sql)
	}
	if len(args) != 1 || args[0] != "summer" {
		t.Errorf("args = %v", args)
	}
}

func TestNewAndNewOr_Flattening(t *testing.T) {
	if NewAnd() != nil {
		t.Error("empty And should collapse to nil")
	}
	single := Eq{Field: "status", Value: "draft"}
	if got := NewAnd(nil, single, nil); got != single {
		t.Errorf("single-child And should collapse to the child, got %+v", got)
	}
	if _, ok := NewOr(single, Eq{Field: "stock", Value: 0}).(Or); !ok {
		t.Error("two children should produce an Or node")
	}
}
