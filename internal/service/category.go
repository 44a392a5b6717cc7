package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/repository"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.CategorySummary, error)
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.CategorySummary, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list categories: %w", err)
	}

	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	category, err := s.categoryRepo.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, fmt.Errorf("category repository get category: %w", err)
	}

	return category, nil
}
