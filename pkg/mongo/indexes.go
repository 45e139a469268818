package mongo

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Users Collection Indexes
	// Index 1: one profile per identity subject
	{
		CollectionName: UsersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_subject_unique"),
		},
	},

	// Products Collection Indexes
	// Index 2: category filter
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_category"),
		},
	},
	// Index 3: featured filter
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "featured", Value: 1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_featured"),
		},
	},

	// Cart Collection Indexes
	// Index 4: one line per (user, product)
	{
		CollectionName: CartCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "product_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_cart_user_product_unique"),
		},
	},
	// Index 5: cart lookup by user
	{
		CollectionName: CartCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_cart_user"),
		},
	},

	// Orders Collection Indexes
	// Index 6: order history, newest first
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
	// Index 7: Unique index on order_number
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_order_number_unique"),
		},
	},
	// Index 8: status breakdowns
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_order_status"),
		},
	},

	// Newsletters Collection Indexes
	// Index 9: one subscription per email
	{
		CollectionName: NewslettersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_newsletter_email_unique"),
		},
	},

	// Contacts Collection Indexes
	// Index 10: admin inbox, newest first
	{
		CollectionName: ContactsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_contact_recent"),
		},
	},
}

// EnsureIndexes creates every required index. Existing identical indexes are a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	log.Println("Starting index creation...")

	for _, idxConfig := range requiredIndexes {
		collection := s.GetCollection(idxConfig.CollectionName)

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			log.Printf("Error creating index on collection %s: %v",
				idxConfig.CollectionName, err)
			return err
		}

		log.Printf("✓ Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	}

	log.Println("All indexes created successfully!")
	return nil
}
