package model

import (
	"time"

	"github.com/google/uuid"
)

// Variant is a purchasable SKU-bearing unit within a product. A variant
// belongs to exactly one product for its lifetime and its SKU is unique
// across the whole catalogue.
type Variant struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Sku            string    `json:"sku"`
	Name           string    `json:"name"`
	PriceCents     int64     `json:"price_cents"`
	InventoryCount int64     `json:"inventory_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
