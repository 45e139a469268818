package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

func TestWithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	productID := bson.NewObjectID()

	_, err := s.Cart().AddQuantity(ctx, "alice", productID, 2)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Orders().Insert(ctx, &models.Order{UserID: "alice", OrderNumber: "ORD-1-abcdefghi"}); err != nil {
			return err
		}
		if _, err := s.Cart().DeleteByUser(ctx, "alice"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Orders().GetByNumber(ctx, "ORD-1-abcdefghi")
	assert.ErrorIs(t, err, global.ErrNotFound)
	items, err := s.Cart().ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestWithTransactionCommits(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.Orders().Insert(ctx, &models.Order{UserID: "alice", OrderNumber: "ORD-2-abcdefghi"})
	})
	require.NoError(t, err)

	order, err := s.Orders().GetByNumber(ctx, "ORD-2-abcdefghi")
	require.NoError(t, err)
	assert.False(t, order.CreatedAt.IsZero())

	dup := &models.Order{UserID: "bob", OrderNumber: "ORD-2-abcdefghi"}
	assert.ErrorIs(t, s.Orders().Insert(ctx, dup), store.ErrDuplicateKey)
}

func TestCartAddQuantityMergesLines(t *testing.T) {
	ctx := context.Background()
	s := New()
	productID := bson.NewObjectID()

	first, err := s.Cart().AddQuantity(ctx, "alice", productID, 2)
	require.NoError(t, err)
	second, err := s.Cart().AddQuantity(ctx, "alice", productID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	other, err := s.Cart().AddQuantity(ctx, "bob", productID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestOrderReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	order := &models.Order{
		UserID:      "alice",
		OrderNumber: "ORD-3-abcdefghi",
		Items:       []models.OrderItem{{Name: "Scarf", Price: 24.99, Quantity: 1}},
	}
	require.NoError(t, s.Orders().Insert(ctx, order))
	order.Items[0].Price = 1

	got, err := s.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 24.99, got.Items[0].Price)

	got.Items[0].Price = 2
	again, err := s.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 24.99, again.Items[0].Price)
}

func TestRollbackKeepsWritesFromOutsideTheTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()
	productID := bson.NewObjectID()

	inTx := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithTransaction(ctx, func(ctx context.Context) error {
			close(inTx)
			<-release
			return errors.New("out of stock")
		})
	}()
	<-inTx

	written := make(chan error, 1)
	go func() {
		_, err := s.Cart().AddQuantity(ctx, "bob", productID, 1)
		written <- err
	}()

	select {
	case err := <-written:
		t.Fatalf("write finished while another transaction was open: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-written)

	items, err := s.Cart().ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := s.Cart().AddQuantity(ctx, "alice", bson.NewObjectID(), 1)
			return err
		})
	})
	require.NoError(t, err)

	items, err := s.Cart().ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProductReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	featured := true
	rating := 4.5
	product := &models.Product{
		Name:     "Silk Scarf",
		Price:    24.99,
		Category: "Accessories",
		Tags:     []string{"silk"},
		Featured: &featured,
		Rating:   &rating,
	}
	require.NoError(t, s.Products().InsertMany(ctx, []*models.Product{product}))
	product.Tags[0] = "changed by caller"

	got, err := s.Products().Get(ctx, product.ID)
	require.NoError(t, err)
	got.Tags[0] = "cotton"
	*got.Featured = false
	*got.Rating = 1

	listed, err := s.Products().Featured(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Tags[0] = "wool"

	again, err := s.Products().Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"silk"}, again.Tags)
	assert.True(t, again.IsFeatured())
	assert.Equal(t, 4.5, *again.Rating)
}
