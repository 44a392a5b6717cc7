package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/event"
	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/repository"
	"github.com/minhvu/catalogue/internal/storage/db"
	"github.com/minhvu/catalogue/internal/validation"
	"github.com/minhvu/catalogue/pkg/outbox"
	"github.com/minhvu/catalogue/pkg/ptr"
)

// ProductService implements the product side of the catalogue: creation
// with initial variants, aggregated listing, merge-patch updates and
// non-idempotent soft deletes.
type ProductService interface {
	CreateProduct(ctx context.Context, payload validation.ProductCreate) (model.ProductDetail, error)
	ListProducts(ctx context.Context, filter repository.ListProductsFilter) ([]model.ProductSummary, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch validation.ProductPatch) (model.ProductDetail, error)
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
	AddVariant(ctx context.Context, productID uuid.UUID, payload validation.VariantCreate) (model.Variant, error)
}

type productService struct {
	db            db.DB
	engine        *validation.Engine
	productRepo   repository.ProductRepository
	variantRepo   repository.VariantRepository
	categoryRepo  repository.CategoryRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	engine *validation.Engine,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	categoryRepo repository.CategoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		engine:        engine,
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		categoryRepo:  categoryRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

// CreateProduct inserts the product and every variant in one transaction.
// A duplicate SKU anywhere in the batch rolls the whole thing back.
func (s *productService) CreateProduct(ctx context.Context, payload validation.ProductCreate) (model.ProductDetail, error) {
	if err := s.engine.ProductCreate(payload); err != nil {
		return model.ProductDetail{}, err
	}

	productID, err := uuid.NewV7()
	if err != nil {
		return model.ProductDetail{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:          productID,
		Name:        *payload.Name,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
		Status:      validation.NormalizedStatus(payload.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	variants := make([]model.Variant, 0, len(payload.Variants))
	for _, v := range payload.Variants {
		variantID, err := uuid.NewV7()
		if err != nil {
			return model.ProductDetail{}, fmt.Errorf("generate uuid v7: %w", err)
		}
		variants = append(variants, model.Variant{
			ID:             variantID,
			ProductID:      productID,
			Sku:            *v.Sku,
			Name:           *v.Name,
			PriceCents:     *v.PriceCents,
			InventoryCount: *v.InventoryCount,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	ev := event.ProductCreatedEvent{
		ProductID:    product.ID.String(),
		Name:         product.Name,
		Status:       string(product.Status),
		VariantCount: len(variants),
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.ProductDetail{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		for _, variant := range variants {
			if err := s.variantRepo.WithDB(tx).CreateVariant(ctx, variant); err != nil {
				return fmt.Errorf("variant repository create variant: %w", err)
			}
		}

		if err := s.outboxMsgRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicProductCreated,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(product.ID.String()),
		}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.ProductDetail{}, fmt.Errorf("db with tx: %w", err)
	}

	return s.GetProduct(ctx, productID)
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ListProductsFilter) ([]model.ProductSummary, error) {
	summaries, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return summaries, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.ProductDetail, error) {
	product, categoryName, err := s.productRepo.GetProductHeader(ctx, id)
	if err != nil {
		return model.ProductDetail{}, fmt.Errorf("product repository get product header: %w", err)
	}

	variants, err := s.variantRepo.ListVariantsByProduct(ctx, id)
	if err != nil {
		return model.ProductDetail{}, fmt.Errorf("variant repository list variants: %w", err)
	}

	return model.ProductDetail{
		Product:      product,
		CategoryName: categoryName,
		Variants:     variants,
	}, nil
}

// UpdateProduct merge-patches the product's basic fields. Soft-deleted
// products remain updatable; the read-back below therefore must not
// filter on deleted_at.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, patch validation.ProductPatch) (model.ProductDetail, error) {
	params := repository.UpdateProductParams{
		Name:        patch.Name,
		Description: patch.Description,
		CategoryID:  patch.CategoryID,
		Status:      patch.Status,
	}
	if err := s.productRepo.UpdateProduct(ctx, id, params, time.Now().UTC()); err != nil {
		return model.ProductDetail{}, fmt.Errorf("product repository update product: %w", err)
	}

	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.ProductDetail{}, fmt.Errorf("product repository get product: %w", err)
	}

	var categoryName *string
	if product.CategoryID != nil {
		category, err := s.categoryRepo.GetCategory(ctx, *product.CategoryID)
		if err != nil {
			return model.ProductDetail{}, fmt.Errorf("category repository get category: %w", err)
		}
		categoryName = &category.Name
	}

	variants, err := s.variantRepo.ListVariantsByProduct(ctx, id)
	if err != nil {
		return model.ProductDetail{}, fmt.Errorf("variant repository list variants: %w", err)
	}

	return model.ProductDetail{
		Product:      product,
		CategoryName: categoryName,
		Variants:     variants,
	}, nil
}

// SoftDeleteProduct stamps deleted_at exactly once. A repeat delete is a
// conflict carrying the timestamp of the delete that won, never a silent
// second success.
func (s *productService) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()

	ev := event.ProductDeletedEvent{
		ProductID: id.String(),
		DeletedAt: now,
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		stamped, err := s.productRepo.WithDB(tx).SoftDeleteProduct(ctx, id, now)
		if err != nil {
			return fmt.Errorf("product repository soft delete product: %w", err)
		}

		if !stamped {
			product, err := s.productRepo.WithDB(tx).GetProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("product repository get product: %w", err)
			}
			if product.DeletedAt != nil {
				return apperr.NewAlreadyDeleted(*product.DeletedAt)
			}
			return fmt.Errorf("soft delete product: %w", apperr.ProductNotFoundErr)
		}

		if err := s.outboxMsgRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicProductDeleted,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(id.String()),
		}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

// AddVariant appends a variant to an existing live product.
func (s *productService) AddVariant(ctx context.Context, productID uuid.UUID, payload validation.VariantCreate) (model.Variant, error) {
	if err := s.engine.VariantAppend(payload); err != nil {
		return model.Variant{}, err
	}

	variantID, err := uuid.NewV7()
	if err != nil {
		return model.Variant{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	variant := model.Variant{
		ID:             variantID,
		ProductID:      productID,
		Sku:            *payload.Sku,
		Name:           *payload.Name,
		PriceCents:     *payload.PriceCents,
		InventoryCount: *payload.InventoryCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if _, _, err := s.productRepo.WithDB(tx).GetProductHeader(ctx, productID); err != nil {
			return fmt.Errorf("product repository get product header: %w", err)
		}

		if err := s.variantRepo.WithDB(tx).CreateVariant(ctx, variant); err != nil {
			return fmt.Errorf("variant repository create variant: %w", err)
		}

		return nil
	}); err != nil {
		return model.Variant{}, fmt.Errorf("db with tx: %w", err)
	}

	return variant, nil
}
