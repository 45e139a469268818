// Package store defines the record store the storefront services run against.
//
// Every lookup that finds nothing returns an error wrapping global.ErrNotFound.
// Lists are newest first unless stated otherwise.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// ErrDuplicateKey is returned when an insert violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

type Store interface {
	Products() ProductRepository
	Cart() CartRepository
	Orders() OrderRepository
	Users() UserRepository
	Contacts() ContactRepository
	Newsletters() NewsletterRepository

	// WithTransaction runs fn as one unit. Repositories must be called with the
	// ctx passed to fn. When Transactional is false fn runs without isolation
	// and nothing is rolled back on error.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool

	Ping(ctx context.Context) error
}

type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter, page models.PageRequest, defaultSize int) (models.Page[models.Product], error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	InsertMany(ctx context.Context, products []*models.Product) error
	Update(ctx context.Context, id bson.ObjectID, update models.ProductUpdate) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type CartRepository interface {
	// AddQuantity increments the (user, product) line, creating it when absent.
	AddQuantity(ctx context.Context, userID string, productID bson.ObjectID, quantity int) (*models.CartItem, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.CartItem, error)
	// ListByUser returns the user's lines oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	SetQuantity(ctx context.Context, id bson.ObjectID, quantity int) error
	Delete(ctx context.Context, id bson.ObjectID) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// StatusSummary aggregates orders sharing a status.
type StatusSummary struct {
	Status  models.OrderStatus `json:"status" bson:"_id"`
	Count   int                `json:"count" bson:"count"`
	Revenue float64            `json:"revenue" bson:"revenue"`
}

// ProductSales aggregates snapshot lines of one product across orders.
type ProductSales struct {
	ProductID bson.ObjectID `json:"product_id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Units     int           `json:"units" bson:"units"`
	Revenue   float64       `json:"revenue" bson:"revenue"`
}

type OrderRepository interface {
	// Insert returns ErrDuplicateKey when the order number is taken.
	Insert(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id bson.ObjectID) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, page models.PageRequest, defaultSize int) (models.Page[models.Order], error)
	UpdateStatus(ctx context.Context, id bson.ObjectID, status models.OrderStatus) error
	Delete(ctx context.Context, id bson.ObjectID) error
	StatusSummaries(ctx context.Context) ([]StatusSummary, error)
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
}

type UserRepository interface {
	GetBySubject(ctx context.Context, userID string) (*models.User, error)
	// Upsert creates or overwrites the profile of userID and returns its id.
	Upsert(ctx context.Context, userID string, input models.UserInput) (bson.ObjectID, error)
	Patch(ctx context.Context, userID string, update models.ProfileUpdate) (bson.ObjectID, error)
}

type ContactRepository interface {
	Insert(ctx context.Context, contact *models.Contact) error
	ListRecent(ctx context.Context, limit int) ([]models.Contact, error)
}

type NewsletterRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Newsletter, error)
	Insert(ctx context.Context, sub *models.Newsletter) error
	Reactivate(ctx context.Context, id bson.ObjectID, subscribedAt time.Time) error
	Deactivate(ctx context.Context, id bson.ObjectID) error
}
