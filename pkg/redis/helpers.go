package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	productTTL    = 24 * time.Hour
	categoriesTTL = 10 * time.Minute

	categoriesKey = "catalog:categories"
	productsIndex = "catalog:products"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ProductCache is a read-through cache for product detail and categories.
type ProductCache struct {
	client *redisclient.Client
}

func NewProductCache(client *redisclient.Client) *ProductCache {
	return &ProductCache{client: client}
}

func productKey(id bson.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

func (c *ProductCache) GetProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	productJSON, err := c.client.Get(ctx, productKey(id)).Result()
	if errors.Is(err, redisclient.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// SetProduct stores a single product and records its key for bulk invalidation
func (c *ProductCache) SetProduct(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID.Hex(), err)
	}

	key := productKey(product.ID)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, productJSON, productTTL)
	pipe.SAdd(ctx, productsIndex, key)
	pipe.Expire(ctx, productsIndex, productTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for product %s: %w", product.ID.Hex(), err)
	}
	return nil
}

// RemoveProduct drops a product entry and the categories list it may have fed
func (c *ProductCache) RemoveProduct(ctx context.Context, id bson.ObjectID) error {
	key := productKey(id)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key, categoriesKey)
	pipe.SRem(ctx, productsIndex, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove product from Redis cache: %w", err)
	}
	return nil
}

func (c *ProductCache) GetCategories(ctx context.Context) ([]string, error) {
	raw, err := c.client.Get(ctx, categoriesKey).Result()
	if errors.Is(err, redisclient.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	return categories, nil
}

func (c *ProductCache) SetCategories(ctx context.Context, categories []string) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, categoriesKey, raw, categoriesTTL).Err()
}

// InvalidateCatalog removes every cached product and the categories list
func (c *ProductCache) InvalidateCatalog(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, productsIndex).Result()
	if err != nil {
		return err
	}

	keys = append(keys, categoriesKey, productsIndex)
	return c.client.Del(ctx, keys...).Err()
}
