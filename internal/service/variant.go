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

// VariantService covers operations addressed by variant id.
type VariantService interface {
	GetVariant(ctx context.Context, id uuid.UUID) (model.Variant, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, patch validation.VariantPatch) (model.Variant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

type variantService struct {
	db            db.DB
	engine        *validation.Engine
	productRepo   repository.ProductRepository
	variantRepo   repository.VariantRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewVariantService(
	db db.DB,
	engine *validation.Engine,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) VariantService {
	return &variantService{
		db:            db,
		engine:        engine,
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *variantService) GetVariant(ctx context.Context, id uuid.UUID) (model.Variant, error) {
	variant, err := s.variantRepo.GetVariant(ctx, id)
	if err != nil {
		return model.Variant{}, fmt.Errorf("variant repository get variant: %w", err)
	}

	return variant, nil
}

// UpdateVariant merge-patches a variant. When the patch changes the SKU,
// uniqueness is re-checked inside the same transaction as the write; the
// unique index still backstops concurrent writers.
func (s *variantService) UpdateVariant(ctx context.Context, id uuid.UUID, patch validation.VariantPatch) (model.Variant, error) {
	existing, err := s.variantRepo.GetVariant(ctx, id)
	if err != nil {
		return model.Variant{}, fmt.Errorf("variant repository get variant: %w", err)
	}

	skuChanged, err := s.engine.VariantUpdate(existing, patch)
	if err != nil {
		return model.Variant{}, err
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if skuChanged {
			inUse, err := s.variantRepo.WithDB(tx).SkuInUse(ctx, *patch.Sku, id)
			if err != nil {
				return fmt.Errorf("variant repository sku in use: %w", err)
			}
			if inUse {
				return fmt.Errorf("update variant: %w", apperr.SkuExistsErr)
			}
		}

		params := repository.UpdateVariantParams{
			Name:           patch.Name,
			Sku:            patch.Sku,
			PriceCents:     patch.PriceCents,
			InventoryCount: patch.InventoryCount,
		}
		if err := s.variantRepo.WithDB(tx).UpdateVariant(ctx, id, params, time.Now().UTC()); err != nil {
			return fmt.Errorf("variant repository update variant: %w", err)
		}

		return nil
	}); err != nil {
		return model.Variant{}, fmt.Errorf("db with tx: %w", err)
	}

	variant, err := s.variantRepo.GetVariant(ctx, id)
	if err != nil {
		return model.Variant{}, fmt.Errorf("variant repository get variant: %w", err)
	}

	return variant, nil
}

// DeleteVariant removes a variant unless it is the product's last one.
// The parent product row is locked first so two concurrent deletes of
// sibling variants cannot both pass the count check.
func (s *variantService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		variant, err := s.variantRepo.WithDB(tx).GetVariant(ctx, id)
		if err != nil {
			return fmt.Errorf("variant repository get variant: %w", err)
		}

		if err := s.productRepo.WithDB(tx).LockProduct(ctx, variant.ProductID); err != nil {
			return fmt.Errorf("product repository lock product: %w", err)
		}

		count, err := s.variantRepo.WithDB(tx).CountVariantsByProduct(ctx, variant.ProductID)
		if err != nil {
			return fmt.Errorf("variant repository count variants: %w", err)
		}
		if count <= 1 {
			return fmt.Errorf("delete variant: %w", apperr.LastVariantErr)
		}

		if err := s.variantRepo.WithDB(tx).DeleteVariant(ctx, id); err != nil {
			return fmt.Errorf("variant repository delete variant: %w", err)
		}

		ev := event.VariantDeletedEvent{
			VariantID: variant.ID.String(),
			ProductID: variant.ProductID.String(),
			Sku:       variant.Sku,
		}
		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := s.outboxMsgRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicVariantDeleted,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(variant.ProductID.String()),
		}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}
