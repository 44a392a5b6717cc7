package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minhvu/catalogue/pkg/errs"
)

func TestErrorMessage(t *testing.T) {
	err := errs.NewNotFound("PRODUCT_NOT_FOUND", "Product not found")
	assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=Product not found", err.Error())

	wrapped := err.WrapParent(errors.New("no rows"))
	assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=Product not found, Parent=(no rows)", wrapped.Error())
}

func TestErrorUnwrapThroughFmt(t *testing.T) {
	base := errs.NewConflict("SKU_CONFLICT", "One or more SKUs are already in use.")
	err := fmt.Errorf("create product: %w", base)

	var got errs.Error
	assert.True(t, errors.As(err, &got))
	assert.Equal(t, errs.StatusConflict, got.Status())
	assert.Equal(t, "SKU_CONFLICT", got.Code())
	assert.Equal(t, "One or more SKUs are already in use.", got.Msg())
}

func TestWrapParentKeepsOriginalUntouched(t *testing.T) {
	base := errs.NewBadRequest("LAST_VARIANT", "Cannot delete the last variant of a product")
	wrapped := base.WrapParent(errors.New("boom"))

	assert.Nil(t, base.Parent())
	assert.NotNil(t, wrapped.Parent())
	assert.Equal(t, base.Code(), wrapped.Code())
}
