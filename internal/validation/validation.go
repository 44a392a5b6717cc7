// Package validation is the pure validation engine for catalogue writes.
// It checks payloads against structural and business rules before any
// mutation is attempted; no storage or network access happens here.
package validation

import (
	"fmt"
	"regexp"
	"strconv"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/pkg/validator"
)

// ProductCreate is the payload for creating a product with its initial
// variants. Pointer fields distinguish "absent" from zero values.
type ProductCreate struct {
	Name        *string         `json:"name" validate:"required"`
	Description *string         `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Status      *string         `json:"status"`
	Variants    []VariantCreate `json:"variants" validate:"required,min=1,dive"`
}

// VariantCreate is one variant inside a product-create payload, or the
// payload of a variant append.
type VariantCreate struct {
	Sku            *string `json:"sku" validate:"required"`
	Name           *string `json:"name" validate:"required"`
	PriceCents     *int64  `json:"price_cents" validate:"required,gte=0"`
	InventoryCount *int64  `json:"inventory_count" validate:"required,gte=0"`
}

// VariantPatch is a merge-patch for a variant. Absent fields keep their
// stored values and are not validated.
type VariantPatch struct {
	Name           *string `json:"name"`
	Sku            *string `json:"sku"`
	PriceCents     *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	InventoryCount *int64  `json:"inventory_count" validate:"omitempty,gte=0"`
}

// ProductPatch is a merge-patch for a product's basic fields. Status is
// applied as provided; updates carry no status normalization, matching the
// permissive update path.
type ProductPatch struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Status      *string    `json:"status"`
}

// Engine validates catalogue payloads.
type Engine struct {
	v validator.Validator
}

func NewEngine() *Engine {
	return &Engine{v: validator.NewDefaultValidator()}
}

var variantFieldRegex = regexp.MustCompile(`Variants\[(\d+)\]\.(\w+)$`)

// ProductCreate validates a product-create payload. The returned error
// carries the exact client message for the first failing rule, matching
// the order name → variants presence → per-variant fields.
func (e *Engine) ProductCreate(p ProductCreate) error {
	err := e.v.Validate(p)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(govalidator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate product create: %w", err)
	}

	fe := fieldErrs[0]
	if m := variantFieldRegex.FindStringSubmatch(fe.Namespace()); m != nil {
		idx, _ := strconv.Atoi(m[1])
		return apperr.NewInvalidInput(variantFieldMessage(idx, m[2]))
	}

	switch fe.Field() {
	case "Name":
		return apperr.NewInvalidInput("Product name is required and must be a string.")
	case "Variants":
		return apperr.NewInvalidInput("At least one variant is required.")
	}

	return apperr.NewInvalidInput(validator.ValidationErrorMessage(fe))
}

func variantFieldMessage(idx int, field string) string {
	switch field {
	case "Sku":
		return fmt.Sprintf("Variant at index %d requires a valid SKU.", idx)
	case "Name":
		return fmt.Sprintf("Variant at index %d requires a valid name.", idx)
	case "PriceCents":
		return fmt.Sprintf("Variant at index %d requires price_cents >= 0.", idx)
	case "InventoryCount":
		return fmt.Sprintf("Variant at index %d requires inventory_count >= 0.", idx)
	}
	return fmt.Sprintf("Variant at index %d is invalid.", idx)
}

// VariantAppend validates a standalone variant payload using the same
// rules as the embedded create, with index 0 in messages.
func (e *Engine) VariantAppend(v VariantCreate) error {
	err := e.v.Validate(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(govalidator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate variant append: %w", err)
	}

	return apperr.NewInvalidInput(variantFieldMessage(0, fieldErrs[0].Field()))
}

// VariantUpdate validates a variant merge-patch against the stored row.
// It reports whether the patch changes the SKU's value, in which case the
// caller must re-check uniqueness against the store. Setting the SKU to
// its current value is not a change.
func (e *Engine) VariantUpdate(existing model.Variant, patch VariantPatch) (skuChanged bool, err error) {
	if verr := e.v.Validate(patch); verr != nil {
		fieldErrs, ok := verr.(govalidator.ValidationErrors)
		if !ok {
			return false, fmt.Errorf("validate variant update: %w", verr)
		}

		switch fieldErrs[0].Field() {
		case "PriceCents":
			return false, apperr.NewInvalidInput("price_cents must be a positive number")
		case "InventoryCount":
			return false, apperr.NewInvalidInput("inventory_count must be a positive number")
		}
		return false, apperr.NewInvalidInput(validator.ValidationErrorMessage(fieldErrs[0]))
	}

	skuChanged = patch.Sku != nil && *patch.Sku != existing.Sku
	return skuChanged, nil
}

// NormalizedStatus resolves the status for a new product: the provided
// value when it is a known status, active otherwise (including absent).
func NormalizedStatus(status *string) model.ProductStatus {
	if status == nil {
		return model.ProductStatusActive
	}
	if s := model.ProductStatus(*status); s.Valid() {
		return s
	}
	return model.ProductStatusActive
}
