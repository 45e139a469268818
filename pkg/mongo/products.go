package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type productRepo struct {
	coll *mongo.Collection
}

func productID(p models.Product) bson.ObjectID { return p.ID }

func (r productRepo) List(ctx context.Context, filter models.ProductFilter, page models.PageRequest, defaultSize int) (models.Page[models.Product], error) {
	query := bson.D{}
	switch {
	case filter.Category != nil:
		query = append(query, bson.E{Key: "category", Value: *filter.Category})
	case filter.Featured != nil && *filter.Featured:
		query = append(query, bson.E{Key: "featured", Value: true})
	case filter.Featured != nil:
		// Products without the flag count as not featured
		query = append(query, bson.E{Key: "featured", Value: bson.D{{Key: "$ne", Value: true}}})
	}

	result, err := paginate(ctx, r.coll, query, page, defaultSize, productID)
	if err != nil {
		return models.Page[models.Product]{}, translate(err, "list products")
	}
	return result, nil
}

func (r productRepo) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	items, err := findAll[models.Product](ctx, r.coll, bson.D{{Key: "featured", Value: true}}, opts)
	if err != nil {
		return nil, translate(err, "list featured products")
	}
	return items, nil
}

func (r productRepo) Get(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product); err != nil {
		return nil, translate(err, "product "+id.Hex())
	}
	return &product, nil
}

func (r productRepo) InsertMany(ctx context.Context, products []*models.Product) error {
	docs := make([]interface{}, len(products))
	for i, product := range products {
		if product.ID.IsZero() {
			product.ID = bson.NewObjectID()
		}
		product.SetTimestamps()
		docs[i] = product
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return translate(err, fmt.Sprintf("insert %d products", len(products)))
	}
	return nil
}

func (r productRepo) Update(ctx context.Context, id bson.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: update.Fields()}},
		opts,
	).Decode(&product)
	if err != nil {
		return nil, translate(err, "update product "+id.Hex())
	}
	return &product, nil
}

func (r productRepo) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	if err := r.coll.Distinct(ctx, "category", bson.D{}).Decode(&categories); err != nil {
		return nil, translate(err, "distinct categories")
	}
	return categories, nil
}
