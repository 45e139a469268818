package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// OrderItem is a frozen copy of the product taken when the order was placed
type OrderItem struct {
	ProductID bson.ObjectID `json:"product_id" bson:"product_id"`
	Name      string        `json:"name" bson:"name"`
	Price     float64       `json:"price" bson:"price"`
	Quantity  int           `json:"quantity" bson:"quantity"`
	ImageURL  string        `json:"image_url" bson:"image_url"`
}

// ShippingAddress is captured at checkout
type ShippingAddress struct {
	Name    string `json:"name" bson:"name" validate:"required,max=200"`
	Address string `json:"address" bson:"address" validate:"required,max=500"`
	City    string `json:"city" bson:"city" validate:"required,max=100"`
	ZipCode string `json:"zip_code" bson:"zip_code" validate:"required,max=20"`
	Phone   string `json:"phone" bson:"phone" validate:"required,max=30"`
}

// Order represents a placed order. Only Status changes after creation.
type Order struct {
	ID              bson.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID          string          `json:"user_id" bson:"user_id"`
	OrderNumber     string          `json:"order_number" bson:"order_number"`
	Status          OrderStatus     `json:"status" bson:"status"`
	Items           []OrderItem     `json:"items" bson:"items"`
	Subtotal        float64         `json:"subtotal" bson:"subtotal"`
	Tax             float64         `json:"tax" bson:"tax"`
	Shipping        float64         `json:"shipping" bson:"shipping"`
	Total           float64         `json:"total" bson:"total"`
	ShippingAddress ShippingAddress `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   string          `json:"payment_method" bson:"payment_method"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,mongodb"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress    `json:"shipping_address" binding:"required" validate:"required"`
	PaymentMethod   string             `json:"payment_method" binding:"required" validate:"required,max=50"`
}

// OrderReceipt is what checkout returns to the caller
type OrderReceipt struct {
	OrderID     bson.ObjectID `json:"order_id"`
	OrderNumber string        `json:"order_number"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// ApplyTotals stores the breakdown on the order.
func (o *Order) ApplyTotals(t Totals) {
	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.Shipping = t.Shipping
	o.Total = t.Total
}

// PricedLines exposes the snapshot for totals computation.
func (o *Order) PricedLines() []PricedLine {
	lines := make([]PricedLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, PricedLine{Price: item.Price, Quantity: item.Quantity})
	}
	return lines
}

// SetTimestamps sets created_at and updated_at timestamps
func (o *Order) SetTimestamps() {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// GetItemCount returns the total number of units in the order
func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// SnapshotItem copies the product fields an order keeps.
func SnapshotItem(p *Product, quantity int) OrderItem {
	return OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		ImageURL:  p.ImageURL,
	}
}

const (
	orderSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	orderSuffixLength   = 9
	// largest multiple of 36 that fits in a byte; higher values would bias the draw
	orderSuffixCutoff = 252
)

// GenerateOrderNumber returns ORD-<unix millis>-<9 base36 chars>. Uniqueness is
// probabilistic; the unique index on order_number catches collisions.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), randomSuffix(uuid.New))
}

// randomSuffix draws base36 characters from the random bytes of v4 UUIDs,
// skipping the version and variant bytes.
func randomSuffix(next func() uuid.UUID) string {
	var suffix strings.Builder
	for suffix.Len() < orderSuffixLength {
		id := next()
		for i, b := range id {
			if i == 6 || i == 8 || b >= orderSuffixCutoff {
				continue
			}
			suffix.WriteByte(orderSuffixAlphabet[int(b)%len(orderSuffixAlphabet)])
			if suffix.Len() == orderSuffixLength {
				break
			}
		}
	}
	return suffix.String()
}
