package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/storage/db"
)

// UpdateVariantParams is a merge-patch: nil fields keep their stored
// values.
type UpdateVariantParams struct {
	Name           *string
	Sku            *string
	PriceCents     *int64
	InventoryCount *int64
}

type VariantRepository interface {
	WithDB(db db.DB) VariantRepository

	CreateVariant(ctx context.Context, variant model.Variant) error
	GetVariant(ctx context.Context, id uuid.UUID) (model.Variant, error)
	// ListVariantsByProduct returns the product's variants in creation
	// order; mutation never reorders them.
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, params UpdateVariantParams, now time.Time) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error
	SkuInUse(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)
	CountVariantsByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type variantRepository struct {
	db db.DB
}

func NewVariantRepository(db db.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r variantRepository) WithDB(db db.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r variantRepository) CreateVariant(ctx context.Context, variant model.Variant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO variants (id, product_id, sku, name, price_cents, inventory_count, created_at, updated_at)
		VALUES (@id, @product_id, @sku, @name, @price_cents, @inventory_count, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":              variant.ID,
		"product_id":      variant.ProductID,
		"sku":             variant.Sku,
		"name":            variant.Name,
		"price_cents":     variant.PriceCents,
		"inventory_count": variant.InventoryCount,
		"created_at":      variant.CreatedAt,
		"updated_at":      variant.UpdatedAt,
	})
	if err != nil {
		if isSkuViolation(err) {
			return fmt.Errorf("insert variant: %w", apperr.DuplicateSkusErr.WrapParent(err))
		}
		return fmt.Errorf("insert variant: %w", err)
	}

	return nil
}

func (r variantRepository) GetVariant(ctx context.Context, id uuid.UUID) (model.Variant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, product_id, sku, name, price_cents, inventory_count, created_at, updated_at
		FROM variants
		WHERE id = $1
	`, id)

	variant, err := scanVariant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Variant{}, fmt.Errorf("get variant: %w", apperr.VariantNotFoundErr)
		}
		return model.Variant{}, fmt.Errorf("get variant: %w", err)
	}

	return variant, nil
}

func (r variantRepository) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, sku, name, price_cents, inventory_count, created_at, updated_at
		FROM variants
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := make([]model.Variant, 0)
	for rows.Next() {
		var v model.Variant
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.Sku, &v.Name,
			&v.PriceCents, &v.InventoryCount, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list variants rows: %w", err)
	}

	return variants, nil
}

func (r variantRepository) UpdateVariant(ctx context.Context, id uuid.UUID, params UpdateVariantParams, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE variants
		SET name            = COALESCE(@name, name),
		    sku             = COALESCE(@sku, sku),
		    price_cents     = COALESCE(@price_cents, price_cents),
		    inventory_count = COALESCE(@inventory_count, inventory_count),
		    updated_at      = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":              id,
		"name":            params.Name,
		"sku":             params.Sku,
		"price_cents":     params.PriceCents,
		"inventory_count": params.InventoryCount,
		"updated_at":      now,
	})
	if err != nil {
		// Losing the race to another writer on the same SKU surfaces the
		// same way as the pre-check.
		if isSkuViolation(err) {
			return fmt.Errorf("update variant: %w", apperr.SkuExistsErr.WrapParent(err))
		}
		return fmt.Errorf("update variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update variant: %w", apperr.VariantNotFoundErr)
	}

	return nil
}

func (r variantRepository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete variant: %w", apperr.VariantNotFoundErr)
	}

	return nil
}

func (r variantRepository) SkuInUse(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var inUse bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM variants WHERE sku = $1 AND id <> $2)
	`, sku, excludeID).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("sku in use: %w", err)
	}

	return inUse, nil
}

func (r variantRepository) CountVariantsByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM variants WHERE product_id = $1
	`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count variants: %w", err)
	}

	return count, nil
}

func scanVariant(row pgx.Row) (model.Variant, error) {
	var v model.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Sku, &v.Name,
		&v.PriceCents, &v.InventoryCount, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}
