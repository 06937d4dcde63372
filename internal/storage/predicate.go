package storage

import (
	"fmt"
	"strings"
)

// Condition is a node of the composable boolean predicate tree consumed by
// ListProducts. Trees are built by the search layer and rendered to SQL by
// the store, so the search layer never touches SQL text.
type Condition interface {
	clause()
}

// And matches when every child matches. Empty And matches everything.
type And struct{ Conds []Condition }

// Or matches when at least one child matches.
type Or struct{ Conds []Condition }

// Eq is an exact equality test on a field.
type Eq struct {
	Field string
	Value any
}

// In is membership of a field's value in a fixed set.
type In struct {
	Field  string
	Values []string
}

// Contains is a case-insensitive substring test on a text field.
type Contains struct {
	Field string
	Value string
}

// GTE is a lower-bound test on an orderable field.
type GTE struct {
	Field string
	Value any
}

// LTE is an upper-bound test on an orderable field.
type LTE struct {
	Field string
	Value any
}

// GT is a strict lower-bound test on an orderable field.
type GT struct {
	Field string
	Value any
}

// InCollection matches products belonging to the named collection.
type InCollection struct{ Name string }

func (And) clause()          {}
func (Or) clause()           {}
func (Eq) clause()           {}
func (In) clause()           {}
func (Contains) clause()     {}
func (GTE) clause()          {}
func (LTE) clause()          {}
func (GT) clause()           {}
func (InCollection) clause() {}

// NewAnd flattens conds into a single condition, dropping nils. Returns nil
// when nothing remains, and the sole child when only one remains.
func NewAnd(conds ...Condition) Condition {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Conds: kept}
}

// NewOr is the disjunctive counterpart of NewAnd.
func NewOr(conds ...Condition) Condition {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Or{Conds: kept}
}

// Dialect selects the SQL flavor a condition tree is rendered for.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// columns whitelists the predicate fields against the products schema.
// Renderers assume the products table is aliased as "p".
var columns = map[string]string{
	"id":          "p.id",
	"name":        "p.name",
	"description": "p.description",
	"sku":         "p.sku",
	"color":       "p.color",
	"material":    "p.material",
	"status":      "p.status",
	"price_cents": "p.price_cents",
	"stock":       "p.stock",
	"rating":      "p.rating",
	"created_at":  "p.created_at",
}

// RenderCondition renders cond to a SQL fragment with positional arguments
// starting at $1 (Postgres) or ? (SQLite). A nil cond renders to "TRUE".
func RenderCondition(cond Condition, dialect Dialect) (string, []any, error) {
	r := &renderer{dialect: dialect}
	sql, err := r.render(cond)
	if err != nil {
		return "", nil, err
	}
	return sql, r.args, nil
}

type renderer struct {
	dialect Dialect
	args    []any
}

func (r *renderer) bind(v any) string {
	r.args = append(r.args, v)
	if r.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", len(r.args))
	}
	return "?"
}

func (r *renderer) column(field string) (string, error) {
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("unknown predicate field: %s", field)
	}
	return col, nil
}

func (r *renderer) render(cond Condition) (string, error) {
	switch c := cond.(type) {
	case nil:
		return "TRUE", nil
	case And:
		return r.renderJunction(c.Conds, " AND ", "TRUE")
	case Or:
		return r.renderJunction(c.Conds, " OR ", "FALSE")
	case Eq:
		col, err := r.column(c.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", col, r.bind(c.Value)), nil
	case In:
		col, err := r.column(c.Field)
		if err != nil {
			return "", err
		}
		if len(c.Values) == 0 {
			return "FALSE", nil
		}
		if r.dialect == DialectPostgres {
			return fmt.Sprintf("%s = ANY(%s)", col, r.bind(c.Values)), nil
		}
		holders := make([]string, len(c.Values))
		for i, v := range c.Values {
			holders[i] = r.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(holders, ", ")), nil
	case Contains:
		col, err := r.column(c.Field)
		if err != nil {
			return "", err
		}
		pattern := "%" + escapeLike(c.Value) + "%"
		if r.dialect == DialectPostgres {
			return fmt.Sprintf("%s ILIKE %s ESCAPE '\\'", col, r.bind(pattern)), nil
		}
		return fmt.Sprintf("lower(%s) LIKE lower(%s) ESCAPE '\\'", col, r.bind(pattern)), nil
	case GTE:
		col, err := r.column(c.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s >= %s", col, r.bind(c.Value)), nil
	case LTE:
		col, err := r.column(c.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s <= %s", col, r.bind(c.Value)), nil
	case GT:
		col, err := r.column(c.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s > %s", col, r.bind(c.Value)), nil
	case InCollection:
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_collections pc JOIN collections c ON c.id = pc.collection_id WHERE pc.product_id = p.id AND c.name = %s)",
			r.bind(c.Name)), nil
	default:
		return "", fmt.Errorf("unknown condition type %T", cond)
	}
}

func (r *renderer) renderJunction(conds []Condition, sep, empty string) (string, error) {
	if len(conds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		if c == nil {
			continue
		}
		part, err := r.render(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return empty, nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
