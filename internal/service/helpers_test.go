package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	cache "julianmorley.ca/con-plar/storefront/pkg/redis"
	"julianmorley.ca/con-plar/storefront/pkg/store"
	"julianmorley.ca/con-plar/storefront/pkg/store/memory"
)

var (
	alice = auth.Identity{Subject: "user_alice"}
	bob   = auth.Identity{Subject: "user_bob"}
)

func ptr[T any](v T) *T { return &v }

func addProduct(t *testing.T, s store.Store, name string, price float64, inStock bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:       name,
		Price:      price,
		Category:   "Tops",
		ImageURL:   "https://example.com/" + name + ".jpg",
		InStock:    inStock,
		StockCount: 10,
	}
	require.NoError(t, s.Products().InsertMany(context.Background(), []*models.Product{p}))
	return p
}

func shippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Name:    "Alice Example",
		Address: "1 Main St",
		City:    "Springfield",
		ZipCode: "12345",
		Phone:   "555-0100",
	}
}

func orderRequest(items ...models.OrderItemRequest) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		Items:           items,
		ShippingAddress: shippingAddress(),
		PaymentMethod:   "card",
	}
}

func line(p *models.Product, qty int) models.OrderItemRequest {
	return models.OrderItemRequest{ProductID: p.ID.Hex(), Quantity: qty}
}

var (
	errCartDown  = errors.New("cart collection unavailable")
	errCacheMiss = cache.ErrCacheMiss
)

// flakyStore is a store without transactions whose cart clear fails.
type flakyStore struct {
	*memory.Store
}

func (f flakyStore) Transactional() bool { return false }

func (f flakyStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f flakyStore) Cart() store.CartRepository {
	return flakyCart{CartRepository: f.Store.Cart()}
}

type flakyCart struct {
	store.CartRepository
}

func (c flakyCart) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return 0, errCartDown
}

// fakeCache is an in-process ProductCache that records calls.
type fakeCache struct {
	products    map[bson.ObjectID]models.Product
	categories  []string
	removed     []bson.ObjectID
	invalidated int
	failReads   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: map[bson.ObjectID]models.Product{}}
}

func (c *fakeCache) GetProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	if c.failReads {
		return nil, errors.New("connection refused")
	}
	p, ok := c.products[id]
	if !ok {
		return nil, errCacheMiss
	}
	return &p, nil
}

func (c *fakeCache) SetProduct(ctx context.Context, product *models.Product) error {
	c.products[product.ID] = *product
	return nil
}

func (c *fakeCache) RemoveProduct(ctx context.Context, id bson.ObjectID) error {
	delete(c.products, id)
	c.categories = nil
	c.removed = append(c.removed, id)
	return nil
}

func (c *fakeCache) GetCategories(ctx context.Context) ([]string, error) {
	if c.categories == nil {
		return nil, errCacheMiss
	}
	return c.categories, nil
}

func (c *fakeCache) SetCategories(ctx context.Context, categories []string) error {
	c.categories = categories
	return nil
}

func (c *fakeCache) InvalidateCatalog(ctx context.Context) error {
	c.products = map[bson.ObjectID]models.Product{}
	c.categories = nil
	c.invalidated++
	return nil
}
