// Package models defines the data types shared across the search service.
package models

import "time"

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	StatusPublished ProductStatus = "published"
	StatusDraft     ProductStatus = "draft"
	StatusArchived  ProductStatus = "archived"
)

// Product is a catalog record as returned by the record store.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	SKU         string        `json:"sku,omitempty"`
	Color       string        `json:"color,omitempty"`
	Material    string        `json:"material,omitempty"`
	PriceCents  int64         `json:"price_cents"`
	Stock       int           `json:"stock"`
	Rating      float64       `json:"rating,omitempty"`
	Status      ProductStatus `json:"status"`
	Collections []string      `json:"collections,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ProductFilters are structural (non-textual) listing constraints.
// Nil pointer fields mean "no constraint".
type ProductFilters struct {
	Status        ProductStatus `json:"status,omitempty"`
	MinPriceCents *int64        `json:"min_price_cents,omitempty"`
	MaxPriceCents *int64        `json:"max_price_cents,omitempty"`
	InStock       *bool         `json:"in_stock,omitempty"`
	MinRating     *float64      `json:"min_rating,omitempty"`
	Collection    string        `json:"collection,omitempty"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
}
