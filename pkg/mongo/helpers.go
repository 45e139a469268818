package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

// translate maps driver errors onto the store sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, global.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, store.ErrDuplicateKey)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// paginate walks filter newest first by _id, continuing below the cursor id.
func paginate[T any](ctx context.Context, coll *mongo.Collection, filter bson.D, req models.PageRequest, defaultSize int, idOf func(T) bson.ObjectID) (models.Page[T], error) {
	after, ok, err := req.After()
	if err != nil {
		return models.Page[T]{}, global.NewValidationFailure("cursor", "invalid cursor", "invalid_format")
	}
	if ok {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$lt", Value: after}}})
	}

	size := req.Size(defaultSize)
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(size + 1))

	items, err := findAll[T](ctx, coll, filter, opts)
	if err != nil {
		return models.Page[T]{}, err
	}
	return models.NewPage(items, size, idOf), nil
}
