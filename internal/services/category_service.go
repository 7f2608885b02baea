package services

import (
	"context"

	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/repository"
)

// CategoryService exposes the cached category list
type CategoryService struct {
	categories repository.CategoryRepositoryInterface
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories repository.CategoryRepositoryInterface) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.categories.GetAll(ctx)
}
