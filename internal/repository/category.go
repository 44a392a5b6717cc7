package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/storage/db"
)

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository

	// ListCategories returns all categories in alphabetical order, each
	// with the count of non-deleted products referencing it.
	ListCategories(ctx context.Context) ([]model.CategorySummary, error)
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) ListCategories(ctx context.Context) ([]model.CategorySummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.deleted_at IS NULL
		GROUP BY c.id, c.name
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.CategorySummary, 0)
	for rows.Next() {
		var c model.CategorySummary
		if err := rows.Scan(&c.ID, &c.Name, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories rows: %w", err)
	}

	return categories, nil
}

func (r categoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Category{}, fmt.Errorf("get category: %w", apperr.CategoryNotFoundErr)
		}
		return model.Category{}, fmt.Errorf("get category: %w", err)
	}

	return c, nil
}
