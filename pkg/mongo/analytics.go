package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

// StatusSummaries counts orders and sums their totals per status.
func (r orderRepo) StatusSummaries(ctx context.Context) ([]store.StatusSummary, error) {
	pipeline := bson.A{
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$status"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
			}},
		},
		bson.D{
			{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}},
		},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "aggregate order statuses")
	}
	defer cursor.Close(ctx)

	summaries := []store.StatusSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, translate(err, "decode order statuses")
	}
	return summaries, nil
}

// TopProducts ranks products by units sold, read from the order snapshots.
// Cancelled orders are excluded.
func (r orderRepo) TopProducts(ctx context.Context, limit int) ([]store.ProductSales, error) {
	pipeline := bson.A{
		bson.D{
			{Key: "$match", Value: bson.D{
				{Key: "status", Value: bson.D{{Key: "$ne", Value: models.OrderStatusCancelled}}},
			}},
		},
		bson.D{{Key: "$unwind", Value: "$items"}},
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$items.product_id"},
				{Key: "name", Value: bson.D{{Key: "$first", Value: "$items.name"}}},
				{Key: "units", Value: bson.D{{Key: "$sum", Value: "$items.quantity"}}},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: bson.D{
					{Key: "$multiply", Value: bson.A{"$items.price", "$items.quantity"}},
				}}}},
			}},
		},
		bson.D{
			{Key: "$sort", Value: bson.D{
				{Key: "units", Value: -1},
				{Key: "revenue", Value: -1},
			}},
		},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "aggregate top products")
	}
	defer cursor.Close(ctx)

	sales := []store.ProductSales{}
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, translate(err, "decode top products")
	}
	return sales, nil
}
