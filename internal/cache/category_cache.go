package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	categoriesCacheKey  = "categories"
	categoriesCacheName = "categories"
)

// CategoryFetcher loads every category from the backing store
type CategoryFetcher func(ctx context.Context) ([]*models.Category, error)

// CategoryCacheInterface is the read side of the category cache
type CategoryCacheInterface interface {
	Initialize(ctx context.Context) error
	Get(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, bool, error)
	Invalidate()
	IsReady() bool
}

var _ CategoryCacheInterface = (*CategoryCache)(nil)

// CategoryCache keeps the category list in memory
type CategoryCache struct {
	cache   *gocache.Cache
	fetcher CategoryFetcher
	ttl     time.Duration
	mu      sync.RWMutex
	ready   bool
}

// NewCategoryCache creates a category cache that expires entries after ttlSeconds
func NewCategoryCache(fetcher CategoryFetcher, ttlSeconds int) *CategoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &CategoryCache{
		cache:   gocache.New(ttl, 2*ttl),
		fetcher: fetcher,
		ttl:     ttl,
	}
}

// Initialize performs initial cache population (synchronous, blocks until ready).
// Should be called during application startup before accepting requests.
func (cc *CategoryCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing category cache...")
	if _, err := cc.refresh(ctx); err != nil {
		logger.Error("Failed to initialize category cache", zap.Error(err))
		return err
	}

	cc.mu.Lock()
	cc.ready = true
	cc.mu.Unlock()

	logger.Info("Category cache initialized successfully")
	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (cc *CategoryCache) IsReady() bool {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.ready
}

// Get returns the cached categories, fetching them on a miss
func (cc *CategoryCache) Get(ctx context.Context) ([]*models.Category, error) {
	if data, found := cc.cache.Get(categoriesCacheKey); found {
		categories, ok := data.([]*models.Category)
		if ok {
			metrics.CacheHits.WithLabelValues(categoriesCacheName).Inc()
			return categories, nil
		}
		logger.Error("Invalid category cache data type")
		cc.cache.Delete(categoriesCacheKey)
	}

	metrics.CacheMisses.WithLabelValues(categoriesCacheName).Inc()
	logger.Debug("Category cache miss, fetching from database")
	return cc.refresh(ctx)
}

// GetByID looks a category up by id
func (cc *CategoryCache) GetByID(ctx context.Context, id int64) (*models.Category, bool, error) {
	categories, err := cc.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	for _, cat := range categories {
		if cat.ID == id {
			return cat, true, nil
		}
	}
	return nil, false, nil
}

// Invalidate drops the cached list so the next read goes to the database
func (cc *CategoryCache) Invalidate() {
	cc.cache.Delete(categoriesCacheKey)
	metrics.CacheSize.WithLabelValues(categoriesCacheName).Set(0)
}

func (cc *CategoryCache) refresh(ctx context.Context) ([]*models.Category, error) {
	categories, err := cc.fetcher(ctx)
	if err != nil {
		logger.Error("Failed to refresh category cache", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	cc.cache.Set(categoriesCacheKey, categories, cc.ttl)
	metrics.CacheSize.WithLabelValues(categoriesCacheName).Set(float64(len(categories)))

	logger.Info("Category cache refreshed", zap.Int("count", len(categories)))
	return categories, nil
}
