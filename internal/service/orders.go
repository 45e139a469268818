package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

const (
	DefaultOrderPageSize   = 10
	DefaultTopProductLimit = 5

	// orderNumberAttempts bounds how often checkout regenerates a colliding
	// order number.
	orderNumberAttempts = 3
)

type Orders struct {
	store store.Store

	now         func() time.Time
	orderNumber func(time.Time) string
}

func NewOrders(s store.Store) *Orders {
	return &Orders{
		store:       s,
		now:         time.Now,
		orderNumber: models.GenerateOrderNumber,
	}
}

// OrderStats is the admin dashboard summary. Revenue leaves out cancelled orders.
type OrderStats struct {
	ByStatus     []store.StatusSummary `json:"by_status"`
	TotalOrders  int                   `json:"total_orders"`
	TotalRevenue float64               `json:"total_revenue"`
}

// CreateOrder turns the requested items into a pending order and empties the
// caller's whole cart, including lines that were not ordered.
//
// Product checks, the insert and the cart clear run in one store transaction.
// On a store without transactions a failed cart clear deletes the new order
// again. A colliding order number restarts the unit with a fresh number.
func (o *Orders) CreateOrder(ctx context.Context, id auth.Identity, req models.CreateOrderRequest) (models.OrderReceipt, error) {
	if err := requireIdentity(id); err != nil {
		return models.OrderReceipt{}, err
	}
	if err := global.Validate(req); err != nil {
		return models.OrderReceipt{}, err
	}

	var err error
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		var receipt models.OrderReceipt
		receipt, err = o.placeOrder(ctx, id.Subject, req)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, store.ErrDuplicateKey) {
			return models.OrderReceipt{}, err
		}
		log.Printf("Warning: Order number collision on attempt %d: %v", attempt, err)
	}
	return models.OrderReceipt{}, fmt.Errorf("create order after %d attempts: %w", orderNumberAttempts, err)
}

func (o *Orders) placeOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (models.OrderReceipt, error) {
	var receipt models.OrderReceipt
	err := o.store.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := o.buildOrder(ctx, userID, req)
		if err != nil {
			return err
		}

		if err := o.store.Orders().Insert(ctx, order); err != nil {
			return wrap("insert order", err)
		}

		if _, err := o.store.Cart().DeleteByUser(ctx, userID); err != nil {
			if !o.store.Transactional() {
				o.compensate(ctx, order)
			}
			return wrap("clear cart", err)
		}

		receipt = models.OrderReceipt{OrderID: order.ID, OrderNumber: order.OrderNumber}
		return nil
	})
	return receipt, err
}

// buildOrder snapshots every requested product. Nothing is written.
func (o *Orders) buildOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		productID, err := parseID("product_id", line.ProductID)
		if err != nil {
			return nil, err
		}

		product, err := o.store.Products().Get(ctx, productID)
		if isNotFound(err) {
			return nil, &global.ProductUnavailableError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, wrap("load product", err)
		}
		if !product.IsAvailable() {
			return nil, &global.ProductUnavailableError{ProductID: line.ProductID}
		}

		items = append(items, models.SnapshotItem(product, line.Quantity))
	}

	now := o.now()
	order := &models.Order{
		UserID:          userID,
		OrderNumber:     o.orderNumber(now),
		Status:          models.OrderStatusPending,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.ApplyTotals(models.CalculateTotals(order.PricedLines()))
	return order, nil
}

// compensate removes an order whose cart clear failed outside a transaction.
func (o *Orders) compensate(ctx context.Context, order *models.Order) {
	if err := o.store.Orders().Delete(context.WithoutCancel(ctx), order.ID); err != nil {
		log.Printf("Error: Failed to roll back order %s after cart clear failure: %v", order.OrderNumber, err)
		return
	}
	log.Printf("Rolled back order %s after cart clear failure", order.OrderNumber)
}

// GetUserOrders pages through the caller's orders, newest first.
func (o *Orders) GetUserOrders(ctx context.Context, id auth.Identity, page models.PageRequest) (models.Page[models.Order], error) {
	if !id.Authenticated() {
		return models.EmptyPage[models.Order](), nil
	}
	result, err := o.store.Orders().ListByUser(ctx, id.Subject, page, DefaultOrderPageSize)
	if err != nil {
		return models.Page[models.Order]{}, wrap("list orders", err)
	}
	return result, nil
}

// GetOrder returns the order only when it belongs to the caller. Someone
// else's order and a missing one both yield nil, nil.
func (o *Orders) GetOrder(ctx context.Context, id auth.Identity, orderNumber string) (*models.Order, error) {
	if !id.Authenticated() {
		return nil, nil
	}

	order, err := o.store.Orders().GetByNumber(ctx, orderNumber)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get order", err)
	}
	if order.UserID != id.Subject {
		return nil, nil
	}
	return order, nil
}

// UpdateOrderStatus sets any of the five statuses. Transitions are not checked.
func (o *Orders) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	oid, err := parseID("id", orderID)
	if err != nil {
		return err
	}
	if !status.IsValid() {
		return global.NewValidationFailure("status", "must be one of: pending processing shipped delivered cancelled", "oneof")
	}
	return wrap("update order status", o.store.Orders().UpdateStatus(ctx, oid, status))
}

func (o *Orders) OrderStats(ctx context.Context) (OrderStats, error) {
	summaries, err := o.store.Orders().StatusSummaries(ctx)
	if err != nil {
		return OrderStats{}, wrap("order stats", err)
	}

	stats := OrderStats{ByStatus: summaries}
	for _, s := range summaries {
		stats.TotalOrders += s.Count
		if s.Status != models.OrderStatusCancelled {
			stats.TotalRevenue += s.Revenue
		}
	}
	return stats, nil
}

// TopProducts ranks products by units sold across non-cancelled orders.
func (o *Orders) TopProducts(ctx context.Context, limit int) ([]store.ProductSales, error) {
	if limit <= 0 {
		limit = DefaultTopProductLimit
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	top, err := o.store.Orders().TopProducts(ctx, limit)
	return top, wrap("top products", err)
}
