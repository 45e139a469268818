package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CartItem is one product line in a user's cart, unique per (UserID, ProductID)
type CartItem struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string        `json:"user_id" bson:"user_id"`
	ProductID bson.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int           `json:"quantity" bson:"quantity"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// CartLine joins a cart item with the live product. Product is nil when the
// product no longer exists.
type CartLine struct {
	CartItem
	Product *Product `json:"product"`
}

// CartView is the cart page: lines plus the same totals checkout will charge.
type CartView struct {
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"item_count"`
	Totals    Totals     `json:"totals"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required" validate:"required,mongodb"`
	Quantity  int    `json:"quantity" binding:"required" validate:"gt=0"`
}

// UpdateCartItemRequest allows zero and negative quantities; both remove the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required" validate:"required"`
}

// NewCartView prices every line with the live product price.
func NewCartView(lines []CartLine) CartView {
	priced := make([]PricedLine, 0, len(lines))
	count := 0
	for _, line := range lines {
		price := 0.0
		if line.Product != nil {
			price = line.Product.Price
		}
		priced = append(priced, PricedLine{Price: price, Quantity: line.Quantity})
		count += line.Quantity
	}
	if lines == nil {
		lines = []CartLine{}
	}
	return CartView{
		Lines:     lines,
		ItemCount: count,
		Totals:    CalculateTotals(priced),
	}
}
