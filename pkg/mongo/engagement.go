package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type contactRepo struct {
	coll *mongo.Collection
}

func (r contactRepo) Insert(ctx context.Context, contact *models.Contact) error {
	if contact.ID.IsZero() {
		contact.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, contact); err != nil {
		return translate(err, "insert contact")
	}
	return nil
}

func (r contactRepo) ListRecent(ctx context.Context, limit int) ([]models.Contact, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	contacts, err := findAll[models.Contact](ctx, r.coll, bson.D{}, opts)
	if err != nil {
		return nil, translate(err, "list contacts")
	}
	return contacts, nil
}

type newsletterRepo struct {
	coll *mongo.Collection
}

func (r newsletterRepo) GetByEmail(ctx context.Context, email string) (*models.Newsletter, error) {
	var sub models.Newsletter
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&sub); err != nil {
		return nil, translate(err, "newsletter "+email)
	}
	return &sub, nil
}

func (r newsletterRepo) Insert(ctx context.Context, sub *models.Newsletter) error {
	if sub.ID.IsZero() {
		sub.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, sub); err != nil {
		return translate(err, "insert newsletter "+sub.Email)
	}
	return nil
}

func (r newsletterRepo) Reactivate(ctx context.Context, id bson.ObjectID, subscribedAt time.Time) error {
	return r.set(ctx, id, bson.D{
		{Key: "active", Value: true},
		{Key: "subscribed_at", Value: subscribedAt},
	})
}

func (r newsletterRepo) Deactivate(ctx context.Context, id bson.ObjectID) error {
	return r.set(ctx, id, bson.D{{Key: "active", Value: false}})
}

func (r newsletterRepo) set(ctx context.Context, id bson.ObjectID, fields bson.D) error {
	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return translate(err, "update newsletter "+id.Hex())
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "newsletter "+id.Hex())
	}
	return nil
}
