package service

import (
	"context"
	"errors"
	"log"

	"julianmorley.ca/con-plar/storefront/internal/seed"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	cache "julianmorley.ca/con-plar/storefront/pkg/redis"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

const DefaultFeaturedLimit = 8

// CacheStatus reports where a product lookup was served from.
type CacheStatus string

const (
	CacheHit      CacheStatus = "HIT"
	CacheMiss     CacheStatus = "MISS"
	CacheDisabled CacheStatus = "DISABLED"
)

type Catalog struct {
	store store.Store
	cache ProductCache
}

// NewCatalog builds the catalog service. cache may be nil.
func NewCatalog(s store.Store, c ProductCache) *Catalog {
	return &Catalog{store: s, cache: c}
}

// ListProducts returns one page of products, newest first. Category wins over
// featured when both are set.
func (c *Catalog) ListProducts(ctx context.Context, filter models.ProductFilter, page models.PageRequest) (models.Page[models.Product], error) {
	if filter.Category != nil && filter.Featured != nil {
		filter.Featured = nil
	}
	result, err := c.store.Products().List(ctx, filter, page, models.DefaultPageSize)
	if err != nil {
		return models.Page[models.Product]{}, wrap("list products", err)
	}
	return result, nil
}

// GetProduct returns nil, nil when no product has the given id.
func (c *Catalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, _, err := c.LookupProduct(ctx, id)
	return product, err
}

// LookupProduct is GetProduct plus the cache outcome.
func (c *Catalog) LookupProduct(ctx context.Context, id string) (*models.Product, CacheStatus, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, CacheDisabled, err
	}

	status := CacheDisabled
	if c.cache != nil {
		product, err := c.cache.GetProduct(ctx, oid)
		if err == nil {
			return product, CacheHit, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Warning: Failed to read product %s from cache: %v", id, err)
		}
		status = CacheMiss
	}

	product, err := c.store.Products().Get(ctx, oid)
	if isNotFound(err) {
		return nil, status, nil
	}
	if err != nil {
		return nil, status, wrap("get product", err)
	}

	if c.cache != nil {
		if err := c.cache.SetProduct(ctx, product); err != nil {
			log.Printf("Warning: Failed to cache product %s: %v", id, err)
		}
	}
	return product, status, nil
}

// ListFeatured returns up to limit featured products. A non-positive limit
// uses DefaultFeaturedLimit.
func (c *Catalog) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	products, err := c.store.Products().Featured(ctx, limit)
	return products, wrap("list featured products", err)
}

// ListCategories returns every distinct category. Order is not guaranteed.
func (c *Catalog) ListCategories(ctx context.Context) ([]string, error) {
	if c.cache != nil {
		categories, err := c.cache.GetCategories(ctx)
		if err == nil {
			return categories, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Warning: Failed to read categories from cache: %v", err)
		}
	}

	categories, err := c.store.Products().Categories(ctx)
	if err != nil {
		return nil, wrap("list categories", err)
	}

	if c.cache != nil {
		if err := c.cache.SetCategories(ctx, categories); err != nil {
			log.Printf("Warning: Failed to cache categories: %v", err)
		}
	}
	return categories, nil
}

// Seed inserts the sample catalog. It does not check for existing products,
// so every call adds another six.
func (c *Catalog) Seed(ctx context.Context) (int, error) {
	products, err := seed.Products()
	if err != nil {
		return 0, err
	}
	if err := c.store.Products().InsertMany(ctx, products); err != nil {
		return 0, wrap("seed products", err)
	}

	if c.cache != nil {
		if err := c.cache.InvalidateCatalog(ctx); err != nil {
			log.Printf("Warning: Failed to invalidate catalog cache: %v", err)
		}
	}
	log.Printf("Seeded %d products", len(products))
	return len(products), nil
}

// UpdateProduct applies an admin edit. Orders already placed keep their snapshot.
func (c *Catalog) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, global.NewValidationFailure("body", "must contain at least one field to update", "empty_updates")
	}
	if err := global.Validate(update); err != nil {
		return nil, err
	}

	product, err := c.store.Products().Update(ctx, oid, update)
	if err != nil {
		return nil, wrap("update product", err)
	}

	if c.cache != nil {
		if err := c.cache.RemoveProduct(ctx, oid); err != nil {
			log.Printf("Warning: Failed to evict product %s from cache: %v", id, err)
		}
	}
	return product, nil
}
