package repository

import (
	"context"

	"github.com/contactbook/contactbook-api/internal/cache"
	"github.com/contactbook/contactbook-api/internal/models"
)

// CategoryRepository serves categories from the in-memory cache
type CategoryRepository struct {
	source CategoryDataSource
	cache  cache.CategoryCacheInterface
}

// NewCategoryRepository creates a category repository with its own cache
func NewCategoryRepository(source CategoryDataSource, ttlSeconds int) *CategoryRepository {
	return &CategoryRepository{
		source: source,
		cache:  cache.NewCategoryCache(source.GetAllCategories, ttlSeconds),
	}
}

// Cache exposes the cache for startup warm-up and health checks
func (r *CategoryRepository) Cache() cache.CategoryCacheInterface {
	return r.cache
}

// GetAll returns every category
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*models.Category, error) {
	return r.cache.Get(ctx)
}

// CategoryExists implements validation.CategoryLookup
func (r *CategoryRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	_, found, err := r.cache.GetByID(ctx, id)
	if err != nil || found {
		return found, err
	}

	// Categories are managed outside the API, so a miss may come from a stale list
	r.cache.Invalidate()
	_, found, err = r.cache.GetByID(ctx, id)
	return found, err
}
