package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type userRepo struct {
	coll *mongo.Collection
}

func (r userRepo) GetBySubject(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&user); err != nil {
		return nil, translate(err, "user "+userID)
	}
	return &user, nil
}

func (r userRepo) Upsert(ctx context.Context, userID string, input models.UserInput) (bson.ObjectID, error) {
	update := bson.D{
		{Key: "$set", Value: input.Fields()},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: time.Now()}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	var doc struct {
		ID bson.ObjectID `bson:"_id"`
	}
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "user_id", Value: userID}}, update, opts).Decode(&doc)
	if err != nil {
		return bson.ObjectID{}, translate(err, "upsert user "+userID)
	}
	return doc.ID, nil
}

func (r userRepo) Patch(ctx context.Context, userID string, update models.ProfileUpdate) (bson.ObjectID, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	var doc struct {
		ID bson.ObjectID `bson:"_id"`
	}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: update.Fields()}},
		opts,
	).Decode(&doc)
	if err != nil {
		return bson.ObjectID{}, translate(err, "patch user "+userID)
	}
	return doc.ID, nil
}
