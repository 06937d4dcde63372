package models

import "fmt"

// ProductSearchRequest is a listing search: free text plus structural filters.
type ProductSearchRequest struct {
	Query   string         `json:"query,omitempty"`
	Filters ProductFilters `json:"filters,omitempty"`
	Offset  int            `json:"offset,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// Validate normalizes pagination and checks filter consistency.
func (r *ProductSearchRequest) Validate() error {
	if r.Limit <= 0 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	if r.Filters.MinPriceCents != nil && r.Filters.MaxPriceCents != nil &&
		*r.Filters.MinPriceCents > *r.Filters.MaxPriceCents {
		return fmt.Errorf("min price %d exceeds max price %d", *r.Filters.MinPriceCents, *r.Filters.MaxPriceCents)
	}
	return nil
}
