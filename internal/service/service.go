// Package service implements the storefront operations on top of a store.Store.
//
// Every per-user operation takes the caller's auth.Identity explicitly. Reads
// degrade to empty results for anonymous callers; writes fail with
// global.ErrUnauthenticated.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// ProductCache is the read-through cache the catalog consults. It is
// satisfied by *redis.ProductCache.
type ProductCache interface {
	GetProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
	RemoveProduct(ctx context.Context, id bson.ObjectID) error
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
	InvalidateCatalog(ctx context.Context) error
}

func requireIdentity(id auth.Identity) error {
	if !id.Authenticated() {
		return global.ErrUnauthenticated
	}
	return nil
}

// parseID turns a hex id from the caller into an ObjectID.
func parseID(field, hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, global.NewValidationFailure(field, "must be a valid id", "invalid_format")
	}
	return id, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, global.ErrNotFound)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
