package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

type Cart struct {
	store            store.Store
	enforceOwnership bool
}

// NewCart builds the cart service. With enforceOwnership set, a cart item that
// belongs to another subject is reported as not found.
func NewCart(s store.Store, enforceOwnership bool) *Cart {
	return &Cart{store: s, enforceOwnership: enforceOwnership}
}

// AddToCart increments the caller's line for the product, creating it when
// absent, and returns the line id. The product itself is not looked up.
func (c *Cart) AddToCart(ctx context.Context, id auth.Identity, req models.AddToCartRequest) (bson.ObjectID, error) {
	if err := requireIdentity(id); err != nil {
		return bson.ObjectID{}, err
	}
	if err := global.Validate(req); err != nil {
		return bson.ObjectID{}, err
	}
	productID, err := parseID("product_id", req.ProductID)
	if err != nil {
		return bson.ObjectID{}, err
	}

	item, err := c.store.Cart().AddQuantity(ctx, id.Subject, productID, req.Quantity)
	if err != nil {
		return bson.ObjectID{}, wrap("add to cart", err)
	}
	return item.ID, nil
}

// GetCartItems joins the caller's lines with the live products. Anonymous
// callers get an empty slice.
func (c *Cart) GetCartItems(ctx context.Context, id auth.Identity) ([]models.CartLine, error) {
	if !id.Authenticated() {
		return []models.CartLine{}, nil
	}

	items, err := c.store.Cart().ListByUser(ctx, id.Subject)
	if err != nil {
		return nil, wrap("list cart items", err)
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		product, err := c.store.Products().Get(ctx, item.ProductID)
		if err != nil && !isNotFound(err) {
			return nil, wrap("load cart product", err)
		}
		lines = append(lines, models.CartLine{CartItem: item, Product: product})
	}
	return lines, nil
}

// GetCart is the cart page with the totals checkout would charge today.
func (c *Cart) GetCart(ctx context.Context, id auth.Identity) (models.CartView, error) {
	lines, err := c.GetCartItems(ctx, id)
	if err != nil {
		return models.CartView{}, err
	}
	return models.NewCartView(lines), nil
}

// UpdateCartItemQuantity sets the line quantity. Zero or less removes the line.
func (c *Cart) UpdateCartItemQuantity(ctx context.Context, id auth.Identity, cartItemID string, quantity int) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	itemID, err := c.ownedItem(ctx, id, cartItemID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		return wrap("remove cart item", c.store.Cart().Delete(ctx, itemID))
	}
	return wrap("update cart item", c.store.Cart().SetQuantity(ctx, itemID, quantity))
}

func (c *Cart) RemoveFromCart(ctx context.Context, id auth.Identity, cartItemID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	itemID, err := c.ownedItem(ctx, id, cartItemID)
	if err != nil {
		return err
	}
	return wrap("remove cart item", c.store.Cart().Delete(ctx, itemID))
}

// ClearCart deletes every line of the caller and returns how many went.
func (c *Cart) ClearCart(ctx context.Context, id auth.Identity) (int64, error) {
	if err := requireIdentity(id); err != nil {
		return 0, err
	}
	deleted, err := c.store.Cart().DeleteByUser(ctx, id.Subject)
	return deleted, wrap("clear cart", err)
}

// ownedItem parses the id and, when ownership is enforced, checks the line
// belongs to the caller.
func (c *Cart) ownedItem(ctx context.Context, id auth.Identity, cartItemID string) (bson.ObjectID, error) {
	itemID, err := parseID("id", cartItemID)
	if err != nil {
		return bson.ObjectID{}, err
	}
	if !c.enforceOwnership {
		return itemID, nil
	}

	item, err := c.store.Cart().Get(ctx, itemID)
	if err != nil {
		return bson.ObjectID{}, wrap("get cart item", err)
	}
	if item.UserID != id.Subject {
		return bson.ObjectID{}, fmt.Errorf("cart item %s: %w", cartItemID, global.ErrNotFound)
	}
	return itemID, nil
}
