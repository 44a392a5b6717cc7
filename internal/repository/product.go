package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/storage/db"
)

// ListProductsFilter narrows the product list. Search is a substring match
// against name or description; CategoryID is an exact match.
type ListProductsFilter struct {
	Search     string
	CategoryID *uuid.UUID
}

// UpdateProductParams is a merge-patch: nil fields keep their stored
// values.
type UpdateProductParams struct {
	Name        *string
	Description *string
	CategoryID  *uuid.UUID
	Status      *string
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository

	CreateProduct(ctx context.Context, product model.Product) error
	// GetProduct returns the row regardless of soft-delete state; callers
	// that must not see deleted rows use GetProductHeader.
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// GetProductHeader returns a live product with its category name.
	GetProductHeader(ctx context.Context, id uuid.UUID) (model.Product, *string, error)
	ListProducts(ctx context.Context, filter ListProductsFilter) ([]model.ProductSummary, error)
	// UpdateProduct merge-patches the row. It deliberately does not filter
	// on deleted_at: a soft-deleted product stays updatable.
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams, now time.Time) error
	// SoftDeleteProduct stamps deleted_at on a live row. It reports false
	// when no live row matched, without distinguishing absent from
	// already-deleted; callers re-read to tell those apart.
	SoftDeleteProduct(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	// LockProduct takes a row lock on the product for the duration of the
	// surrounding transaction.
	LockProduct(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, category_id, status, created_at, updated_at)
		VALUES (@id, @name, @description, @category_id, @status, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"category_id": product.CategoryID,
		"status":      string(product.Status),
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, category_id, status, deleted_at, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, fmt.Errorf("get product: %w", apperr.ProductNotFoundErr)
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) GetProductHeader(ctx context.Context, id uuid.UUID) (model.Product, *string, error) {
	row := r.db.QueryRow(ctx, `
		SELECT p.id, p.name, p.description, p.category_id, p.status, p.deleted_at,
		       p.created_at, p.updated_at, c.name AS category_name
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`, id)

	var (
		product      model.Product
		categoryName *string
	)
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.CategoryID,
		&product.Status, &product.DeletedAt, &product.CreatedAt, &product.UpdatedAt,
		&categoryName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, nil, fmt.Errorf("get product header: %w", apperr.ProductNotFoundErr)
		}
		return model.Product{}, nil, fmt.Errorf("get product header: %w", err)
	}

	return product, categoryName, nil
}

func (r productRepository) ListProducts(ctx context.Context, filter ListProductsFilter) ([]model.ProductSummary, error) {
	query := `
		SELECT
			p.id, p.name, p.description, p.category_id, p.status, p.deleted_at,
			p.created_at, p.updated_at,
			c.name AS category_name,
			COUNT(v.id) AS variant_count,
			MIN(v.price_cents) AS min_price_cents,
			MAX(v.price_cents) AS max_price_cents,
			COALESCE(SUM(v.inventory_count), 0) AS total_inventory
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN variants v ON v.product_id = p.id
		WHERE p.deleted_at IS NULL
	`
	args := pgx.NamedArgs{}

	if filter.Search != "" {
		query += ` AND (p.name ILIKE @search OR p.description ILIKE @search)`
		args["search"] = "%" + escapeLike(filter.Search) + "%"
	}
	if filter.CategoryID != nil {
		query += ` AND p.category_id = @category_id`
		args["category_id"] = *filter.CategoryID
	}

	query += `
		GROUP BY p.id, c.name
		ORDER BY p.created_at DESC, p.id DESC
	`

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.ProductSummary, 0)
	for rows.Next() {
		var s model.ProductSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.CategoryID, &s.Status, &s.DeletedAt,
			&s.CreatedAt, &s.UpdatedAt,
			&s.CategoryName, &s.VariantCount, &s.MinPriceCents, &s.MaxPriceCents, &s.TotalInventory,
		); err != nil {
			return nil, fmt.Errorf("scan product summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products rows: %w", err)
	}

	return summaries, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name        = COALESCE(@name, name),
		    description = COALESCE(@description, description),
		    category_id = COALESCE(@category_id, category_id),
		    status      = COALESCE(@status, status),
		    updated_at  = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":          id,
		"name":        params.Name,
		"description": params.Description,
		"category_id": params.CategoryID,
		"status":      params.Status,
		"updated_at":  now,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product: %w", apperr.ProductNotFoundErr)
	}

	return nil
}

func (r productRepository) SoftDeleteProduct(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET deleted_at = @now, updated_at = @now
		WHERE id = @id AND deleted_at IS NULL
	`, pgx.NamedArgs{
		"id":  id,
		"now": now,
	})
	if err != nil {
		return false, fmt.Errorf("soft delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r productRepository) LockProduct(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lock product: %w", apperr.ProductNotFoundErr)
		}
		return fmt.Errorf("lock product: %w", err)
	}

	return nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID,
		&p.Status, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
