package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type orderRepo struct {
	coll *mongo.Collection
}

func orderID(o models.Order) bson.ObjectID { return o.ID }

func (r orderRepo) Insert(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = bson.NewObjectID()
	}
	order.SetTimestamps()

	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return translate(err, "insert order "+order.OrderNumber)
	}
	return nil
}

func (r orderRepo) Get(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&order); err != nil {
		return nil, translate(err, "order "+id.Hex())
	}
	return &order, nil
}

func (r orderRepo) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.D{{Key: "order_number", Value: orderNumber}}).Decode(&order); err != nil {
		return nil, translate(err, "order "+orderNumber)
	}
	return &order, nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID string, page models.PageRequest, defaultSize int) (models.Page[models.Order], error) {
	result, err := paginate(ctx, r.coll, bson.D{{Key: "user_id", Value: userID}}, page, defaultSize, orderID)
	if err != nil {
		return models.Page[models.Order]{}, translate(err, "list orders")
	}
	return result, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, id bson.ObjectID, status models.OrderStatus) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return translate(err, "update order "+id.Hex())
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "order "+id.Hex())
	}
	return nil
}

func (r orderRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translate(err, "delete order "+id.Hex())
	}
	if result.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "order "+id.Hex())
	}
	return nil
}
