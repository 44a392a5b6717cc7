package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus is the lifecycle status of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Valid reports whether the status is one of the known values.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDraft, ProductStatusArchived:
		return true
	}
	return false
}

// Product is a catalogue product. DeletedAt is non-nil once the product has
// been soft-deleted; the row stays in place but default reads skip it.
type Product struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	CategoryID  *uuid.UUID    `json:"category_id"`
	Status      ProductStatus `json:"status"`
	DeletedAt   *time.Time    `json:"deleted_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ProductSummary is the list-view shape: a product annotated with its
// category name and variant aggregates. Min/max prices are nil when the
// product has no variants.
type ProductSummary struct {
	Product
	CategoryName   *string `json:"category_name"`
	VariantCount   int64   `json:"variant_count"`
	MinPriceCents  *int64  `json:"min_price_cents"`
	MaxPriceCents  *int64  `json:"max_price_cents"`
	TotalInventory int64   `json:"total_inventory"`
}

// ProductDetail is the detail-view shape: a product with its category name
// and full variant list, ordered by creation time ascending.
type ProductDetail struct {
	Product
	CategoryName *string   `json:"category_name"`
	Variants     []Variant `json:"variants"`
}
