package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/http/apierr"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("maps typed statuses to http statuses", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			err        error
			wantStatus int
			wantError  string
		}{
			{apperr.ProductNotFoundErr, http.StatusNotFound, "Product not found"},
			{apperr.VariantNotFoundErr, http.StatusNotFound, "Variant not found"},
			{apperr.DuplicateSkusErr, http.StatusConflict, "One or more SKUs are already in use."},
			{apperr.SkuExistsErr, http.StatusBadRequest, "SKU already exists"},
			{apperr.LastVariantErr, http.StatusBadRequest, "Cannot delete the last variant of a product"},
			{apperr.NewInvalidInput("Product name is required and must be a string."), http.StatusBadRequest, "Product name is required and must be a string."},
		}

		for _, tt := range tests {
			res := apierr.New(tt.err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantError, res.Error)
			assert.Nil(t, res.DeletedAt)
		}
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("db with tx: %w", fmt.Errorf("soft delete product: %w", apperr.ProductNotFoundErr))
		res := apierr.New(err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, "Product not found", res.Error)
	})

	t.Run("already deleted carries the timestamp", func(t *testing.T) {
		t.Parallel()

		deletedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		res := apierr.New(apperr.NewAlreadyDeleted(deletedAt))

		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.Equal(t, "Product already deleted", res.Error)
		require.NotNil(t, res.DeletedAt)
		assert.Equal(t, deletedAt, *res.DeletedAt)

		body, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"Product already deleted","deleted_at":"2026-08-01T12:00:00Z"}`, string(body))
	})

	t.Run("unknown errors become an opaque 500", func(t *testing.T) {
		t.Parallel()

		res := apierr.New(errors.New("connection refused to 10.0.0.5"))
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Equal(t, "an unknown error occurred", res.Error)
	})

	t.Run("deleted_at is omitted from other error bodies", func(t *testing.T) {
		t.Parallel()

		body, err := json.Marshal(apierr.New(apperr.ProductNotFoundErr))
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"Product not found"}`, string(body))
	})
}
