package apperr

import (
	"time"

	"github.com/minhvu/catalogue/pkg/errs"
)

const (
	InvalidInputCode     = "INVALID_INPUT"
	ProductNotFoundCode  = "PRODUCT_NOT_FOUND"
	VariantNotFoundCode  = "VARIANT_NOT_FOUND"
	CategoryNotFoundCode = "CATEGORY_NOT_FOUND"
	DuplicateSkuCode     = "DUPLICATE_SKU"
	SkuExistsCode        = "SKU_EXISTS"
	LastVariantCode      = "LAST_VARIANT"
	AlreadyDeletedCode   = "PRODUCT_ALREADY_DELETED"
)

var (
	ProductNotFoundErr  = errs.NewNotFound(ProductNotFoundCode, "Product not found")
	VariantNotFoundErr  = errs.NewNotFound(VariantNotFoundCode, "Variant not found")
	CategoryNotFoundErr = errs.NewNotFound(CategoryNotFoundCode, "Category not found")

	// DuplicateSkusErr is the conflict raised when creating variants; the
	// message wording is part of the client contract.
	DuplicateSkusErr = errs.NewConflict(DuplicateSkuCode, "One or more SKUs are already in use.")

	// SkuExistsErr is raised when a variant update would take over another
	// variant's SKU. Updates report this as a bad request, not a conflict.
	SkuExistsErr = errs.NewBadRequest(SkuExistsCode, "SKU already exists")

	LastVariantErr = errs.NewBadRequest(LastVariantCode, "Cannot delete the last variant of a product")
)

// NewInvalidInput builds a validation error with a client-facing message.
func NewInvalidInput(msg string) errs.Error {
	return errs.NewValidationFailed(InvalidInputCode, msg)
}

// AlreadyDeletedError reports a repeated soft delete. It carries the
// timestamp of the delete that won so the caller can render it. Deleting
// twice is a conflict here, not a no-op.
type AlreadyDeletedError struct {
	base      errs.Error
	DeletedAt time.Time
}

func NewAlreadyDeleted(deletedAt time.Time) AlreadyDeletedError {
	return AlreadyDeletedError{
		base:      errs.NewConflict(AlreadyDeletedCode, "Product already deleted"),
		DeletedAt: deletedAt,
	}
}

func (e AlreadyDeletedError) Error() string {
	return e.base.Error()
}

// Unwrap exposes the underlying typed error so generic status mapping
// still applies.
func (e AlreadyDeletedError) Unwrap() error {
	return e.base
}
