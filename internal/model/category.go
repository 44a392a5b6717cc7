package model

import "github.com/google/uuid"

// Category groups products. Categories are read-only in this service.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CategorySummary annotates a category with the number of non-deleted
// products referencing it.
type CategorySummary struct {
	Category
	ProductCount int64 `json:"product_count"`
}
