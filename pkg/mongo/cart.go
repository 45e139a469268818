package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type cartRepo struct {
	coll *mongo.Collection
}

// AddQuantity is a single upsert so concurrent adds of the same product
// accumulate instead of racing. A concurrent first insert can still lose the
// unique index race, in which case the increment is retried once.
func (r cartRepo) AddQuantity(ctx context.Context, userID string, productID bson.ObjectID, quantity int) (*models.CartItem, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "product_id", Value: productID},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var item models.CartItem
	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now()
		update := bson.D{
			{Key: "$inc", Value: bson.D{{Key: "quantity", Value: quantity}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
			{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
		}
		err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
		if err == nil {
			return &item, nil
		}
		if !mongo.IsDuplicateKeyError(err) || attempt > 0 {
			return nil, translate(err, "add to cart")
		}
	}
	return nil, errors.New("add to cart: retries exhausted")
}

func (r cartRepo) Get(ctx context.Context, id bson.ObjectID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&item); err != nil {
		return nil, translate(err, "cart item "+id.Hex())
	}
	return &item, nil
}

func (r cartRepo) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	items, err := findAll[models.CartItem](ctx, r.coll, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, translate(err, "list cart")
	}
	return items, nil
}

func (r cartRepo) SetQuantity(ctx context.Context, id bson.ObjectID, quantity int) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: quantity},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return translate(err, "update cart item "+id.Hex())
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "cart item "+id.Hex())
	}
	return nil
}

func (r cartRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err, "delete cart item "+id.Hex())
	}
	if result.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "cart item "+id.Hex())
	}
	return nil
}

func (r cartRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return 0, translate(err, "clear cart")
	}
	return result.DeletedCount, nil
}
