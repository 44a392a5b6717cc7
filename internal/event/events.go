package event

import "time"

const (
	TopicProductCreated = "catalogue.product.created"
	TopicProductDeleted = "catalogue.product.deleted"
	TopicVariantDeleted = "catalogue.variant.deleted"
)

// ProductCreatedEvent is emitted when a product and its initial variants
// are committed.
type ProductCreatedEvent struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	VariantCount int    `json:"variant_count"`
}

// ProductDeletedEvent is emitted when a product is soft-deleted.
type ProductDeletedEvent struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// VariantDeletedEvent is emitted when a variant is hard-deleted.
type VariantDeletedEvent struct {
	VariantID string `json:"variant_id"`
	ProductID string `json:"product_id"`
	Sku       string `json:"sku"`
}
