package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/event"
	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/repository"
	"github.com/minhvu/catalogue/internal/validation"
	"github.com/minhvu/catalogue/pkg/errs"
	"github.com/minhvu/catalogue/pkg/ptr"
)

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	validPayload := func() validation.ProductCreate {
		return validation.ProductCreate{
			Name: ptr.New("Cold Brew"),
			Variants: []validation.VariantCreate{
				{
					Sku:            ptr.New("CB-250"),
					Name:           ptr.New("250ml"),
					PriceCents:     ptr.New(int64(450)),
					InventoryCount: ptr.New(int64(10)),
				},
				{
					Sku:            ptr.New("CB-500"),
					Name:           ptr.New("500ml"),
					PriceCents:     ptr.New(int64(800)),
					InventoryCount: ptr.New(int64(5)),
				},
			},
		}
	}

	t.Run("creates product, variants and outbox event in one transaction", func(t *testing.T) {
		t.Parallel()

		var (
			createdProduct  model.Product
			createdVariants []model.Variant
		)
		outboxRepo := &recordingOutboxRepo{}
		productRepo := &stubProductRepo{
			createProduct: func(_ context.Context, p model.Product) error {
				createdProduct = p
				return nil
			},
			getProductHeader: func(_ context.Context, id uuid.UUID) (model.Product, *string, error) {
				return createdProduct, nil, nil
			},
		}
		variantRepo := &stubVariantRepo{
			createVariant: func(_ context.Context, v model.Variant) error {
				createdVariants = append(createdVariants, v)
				return nil
			},
			listVariantsByProduct: func(_ context.Context, _ uuid.UUID) ([]model.Variant, error) {
				return createdVariants, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, outboxRepo)

		detail, err := svc.CreateProduct(context.Background(), validPayload())
		require.NoError(t, err)

		assert.Equal(t, "Cold Brew", detail.Name)
		assert.Equal(t, model.ProductStatusActive, detail.Status)
		require.Len(t, detail.Variants, 2)
		assert.Equal(t, "CB-250", detail.Variants[0].Sku)
		for _, v := range detail.Variants {
			assert.Equal(t, detail.ID, v.ProductID)
		}

		var ev event.ProductCreatedEvent
		require.True(t, outboxRepo.payloadOf(event.TopicProductCreated, &ev))
		assert.Equal(t, detail.ID.String(), ev.ProductID)
		assert.Equal(t, 2, ev.VariantCount)
	})

	t.Run("defaults unknown status to active", func(t *testing.T) {
		t.Parallel()

		var createdProduct model.Product
		productRepo := &stubProductRepo{
			createProduct: func(_ context.Context, p model.Product) error {
				createdProduct = p
				return nil
			},
			getProductHeader: func(_ context.Context, _ uuid.UUID) (model.Product, *string, error) {
				return createdProduct, nil, nil
			},
		}
		variantRepo := &stubVariantRepo{
			createVariant: func(_ context.Context, _ model.Variant) error { return nil },
			listVariantsByProduct: func(_ context.Context, _ uuid.UUID) ([]model.Variant, error) {
				return []model.Variant{}, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, &recordingOutboxRepo{})

		payload := validPayload()
		payload.Status = ptr.New("discontinued")
		detail, err := svc.CreateProduct(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, model.ProductStatusActive, detail.Status)
	})

	t.Run("rejects missing name before touching storage", func(t *testing.T) {
		t.Parallel()

		svc := NewProductService(fakeDB{}, validation.NewEngine(), &stubProductRepo{}, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		payload := validPayload()
		payload.Name = nil
		_, err := svc.CreateProduct(context.Background(), payload)
		require.Error(t, err)
		assert.Equal(t, "Product name is required and must be a string.", errMessage(err))
	})

	t.Run("rejects empty variant list", func(t *testing.T) {
		t.Parallel()

		svc := NewProductService(fakeDB{}, validation.NewEngine(), &stubProductRepo{}, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		payload := validPayload()
		payload.Variants = nil
		_, err := svc.CreateProduct(context.Background(), payload)
		require.Error(t, err)
		assert.Equal(t, "At least one variant is required.", errMessage(err))
	})

	t.Run("duplicate sku rolls back the whole create", func(t *testing.T) {
		t.Parallel()

		outboxRepo := &recordingOutboxRepo{}
		productRepo := &stubProductRepo{
			createProduct: func(_ context.Context, _ model.Product) error { return nil },
		}
		variantRepo := &stubVariantRepo{
			createVariant: func(_ context.Context, v model.Variant) error {
				if v.Sku == "CB-500" {
					return apperr.DuplicateSkusErr
				}
				return nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, outboxRepo)

		_, err := svc.CreateProduct(context.Background(), validPayload())
		require.ErrorIs(t, err, apperr.DuplicateSkusErr)
	})
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	productID := uuid.New()

	t.Run("assembles header and variants", func(t *testing.T) {
		t.Parallel()

		productRepo := &stubProductRepo{
			getProductHeader: func(_ context.Context, id uuid.UUID) (model.Product, *string, error) {
				return model.Product{ID: id, Name: "Cold Brew"}, ptr.New("Beverages"), nil
			},
		}
		variantRepo := &stubVariantRepo{
			listVariantsByProduct: func(_ context.Context, _ uuid.UUID) ([]model.Variant, error) {
				return []model.Variant{{Sku: "CB-250"}}, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, &recordingOutboxRepo{})

		detail, err := svc.GetProduct(context.Background(), productID)
		require.NoError(t, err)
		assert.Equal(t, "Cold Brew", detail.Name)
		require.NotNil(t, detail.CategoryName)
		assert.Equal(t, "Beverages", *detail.CategoryName)
		require.Len(t, detail.Variants, 1)
	})

	t.Run("variants keep creation order", func(t *testing.T) {
		t.Parallel()

		base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		ordered := []model.Variant{
			{ID: uuid.New(), Sku: "CB-250", CreatedAt: base},
			{ID: uuid.New(), Sku: "CB-500", CreatedAt: base.Add(time.Minute)},
			{ID: uuid.New(), Sku: "CB-1000", CreatedAt: base.Add(2 * time.Minute)},
		}

		productRepo := &stubProductRepo{
			getProductHeader: func(_ context.Context, id uuid.UUID) (model.Product, *string, error) {
				return model.Product{ID: id}, nil, nil
			},
		}
		variantRepo := &stubVariantRepo{
			listVariantsByProduct: func(_ context.Context, _ uuid.UUID) ([]model.Variant, error) {
				return ordered, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, &recordingOutboxRepo{})

		detail, err := svc.GetProduct(context.Background(), productID)
		require.NoError(t, err)

		skus := make([]string, 0, len(detail.Variants))
		for _, v := range detail.Variants {
			skus = append(skus, v.Sku)
		}
		assert.Equal(t, []string{"CB-250", "CB-500", "CB-1000"}, skus)
	})

	t.Run("soft-deleted product is not found", func(t *testing.T) {
		t.Parallel()

		productRepo := &stubProductRepo{
			getProductHeader: func(_ context.Context, _ uuid.UUID) (model.Product, *string, error) {
				return model.Product{}, nil, apperr.ProductNotFoundErr
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		_, err := svc.GetProduct(context.Background(), productID)
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	productID := uuid.New()

	t.Run("merge-patches and reads back without deleted filter", func(t *testing.T) {
		t.Parallel()

		deletedAt := time.Now().UTC()
		var gotParams repository.UpdateProductParams
		productRepo := &stubProductRepo{
			updateProduct: func(_ context.Context, _ uuid.UUID, params repository.UpdateProductParams, _ time.Time) error {
				gotParams = params
				return nil
			},
			getProduct: func(_ context.Context, id uuid.UUID) (model.Product, error) {
				return model.Product{ID: id, Name: "Nitro Brew", DeletedAt: &deletedAt}, nil
			},
		}
		variantRepo := &stubVariantRepo{
			listVariantsByProduct: func(_ context.Context, _ uuid.UUID) ([]model.Variant, error) {
				return []model.Variant{}, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, &recordingOutboxRepo{})

		detail, err := svc.UpdateProduct(context.Background(), productID, validation.ProductPatch{Name: ptr.New("Nitro Brew")})
		require.NoError(t, err)

		require.NotNil(t, gotParams.Name)
		assert.Equal(t, "Nitro Brew", *gotParams.Name)
		assert.Nil(t, gotParams.Description)
		// A soft-deleted product still updates and still comes back.
		assert.NotNil(t, detail.DeletedAt)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		t.Parallel()

		productRepo := &stubProductRepo{
			updateProduct: func(_ context.Context, _ uuid.UUID, _ repository.UpdateProductParams, _ time.Time) error {
				return apperr.ProductNotFoundErr
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		_, err := svc.UpdateProduct(context.Background(), productID, validation.ProductPatch{})
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestSoftDeleteProduct(t *testing.T) {
	t.Parallel()

	productID := uuid.New()

	t.Run("stamps deleted_at and emits event", func(t *testing.T) {
		t.Parallel()

		outboxRepo := &recordingOutboxRepo{}
		productRepo := &stubProductRepo{
			softDeleteProduct: func(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
				return true, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, &stubVariantRepo{}, &stubCategoryRepo{}, outboxRepo)

		require.NoError(t, svc.SoftDeleteProduct(context.Background(), productID))

		var ev event.ProductDeletedEvent
		require.True(t, outboxRepo.payloadOf(event.TopicProductDeleted, &ev))
		assert.Equal(t, productID.String(), ev.ProductID)
		assert.False(t, ev.DeletedAt.IsZero())
	})

	t.Run("second delete conflicts with the original timestamp", func(t *testing.T) {
		t.Parallel()

		firstDeletedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		outboxRepo := &recordingOutboxRepo{}
		productRepo := &stubProductRepo{
			softDeleteProduct: func(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
				return false, nil
			},
			getProduct: func(_ context.Context, id uuid.UUID) (model.Product, error) {
				return model.Product{ID: id, DeletedAt: &firstDeletedAt}, nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, &stubVariantRepo{}, &stubCategoryRepo{}, outboxRepo)

		err := svc.SoftDeleteProduct(context.Background(), productID)
		var alreadyDeleted apperr.AlreadyDeletedError
		require.ErrorAs(t, err, &alreadyDeleted)
		assert.Equal(t, firstDeletedAt, alreadyDeleted.DeletedAt)
		assert.Empty(t, outboxRepo.msgs)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		t.Parallel()

		productRepo := &stubProductRepo{
			softDeleteProduct: func(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
				return false, nil
			},
			getProduct: func(_ context.Context, _ uuid.UUID) (model.Product, error) {
				return model.Product{}, apperr.ProductNotFoundErr
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		err := svc.SoftDeleteProduct(context.Background(), productID)
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestAddVariant(t *testing.T) {
	t.Parallel()

	productID := uuid.New()

	validPayload := func() validation.VariantCreate {
		return validation.VariantCreate{
			Sku:            ptr.New("CB-1000"),
			Name:           ptr.New("1l"),
			PriceCents:     ptr.New(int64(1400)),
			InventoryCount: ptr.New(int64(3)),
		}
	}

	t.Run("appends to a live product", func(t *testing.T) {
		t.Parallel()

		var created model.Variant
		productRepo := &stubProductRepo{
			getProductHeader: func(_ context.Context, id uuid.UUID) (model.Product, *string, error) {
				return model.Product{ID: id}, nil, nil
			},
		}
		variantRepo := &stubVariantRepo{
			createVariant: func(_ context.Context, v model.Variant) error {
				created = v
				return nil
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, variantRepo, &stubCategoryRepo{}, &recordingOutboxRepo{})

		variant, err := svc.AddVariant(context.Background(), productID, validPayload())
		require.NoError(t, err)
		assert.Equal(t, productID, variant.ProductID)
		assert.Equal(t, "CB-1000", created.Sku)
	})

	t.Run("rejects invalid payload with indexed message", func(t *testing.T) {
		t.Parallel()

		svc := NewProductService(fakeDB{}, validation.NewEngine(), &stubProductRepo{}, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		payload := validPayload()
		payload.Sku = nil
		_, err := svc.AddVariant(context.Background(), productID, payload)
		require.Error(t, err)
		assert.Equal(t, "Variant at index 0 requires a valid SKU.", errMessage(err))
	})

	t.Run("missing product is not found", func(t *testing.T) {
		t.Parallel()

		productRepo := &stubProductRepo{
			getProductHeader: func(_ context.Context, _ uuid.UUID) (model.Product, *string, error) {
				return model.Product{}, nil, apperr.ProductNotFoundErr
			},
		}

		svc := NewProductService(fakeDB{}, validation.NewEngine(), productRepo, &stubVariantRepo{}, &stubCategoryRepo{}, &recordingOutboxRepo{})

		_, err := svc.AddVariant(context.Background(), productID, validPayload())
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

// errMessage unwraps to the client-facing message of a typed error.
func errMessage(err error) string {
	var typed errs.Error
	if errors.As(err, &typed) {
		return typed.Msg()
	}
	return err.Error()
}
