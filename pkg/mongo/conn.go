package mongo

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/store"
)

const (
	ProductsCollection    = "products"
	CartCollection        = "cart"
	OrdersCollection      = "orders"
	UsersCollection       = "users"
	ContactsCollection    = "contacts"
	NewslettersCollection = "newsletters"
)

// Connect creates a client and pings the deployment.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("create MongoDB client: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB successfully")
	return client, nil
}

// Store implements store.Store on top of a MongoDB database.
type Store struct {
	client        *mongo.Client
	db            *mongo.Database
	transactional bool
}

var _ store.Store = (*Store)(nil)

// NewStore wraps database dbName. Multi-document transactions need a replica
// set or sharded cluster; pass transactional=false for a standalone server.
func NewStore(client *mongo.Client, dbName string, transactional bool) *Store {
	return &Store{
		client:        client,
		db:            client.Database(dbName),
		transactional: transactional,
	}
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) GetCollection(collectionName string) *mongo.Collection {
	return s.db.Collection(collectionName)
}

func (s *Store) Products() store.ProductRepository {
	return productRepo{coll: s.GetCollection(ProductsCollection)}
}

func (s *Store) Cart() store.CartRepository {
	return cartRepo{coll: s.GetCollection(CartCollection)}
}

func (s *Store) Orders() store.OrderRepository {
	return orderRepo{coll: s.GetCollection(OrdersCollection)}
}

func (s *Store) Users() store.UserRepository {
	return userRepo{coll: s.GetCollection(UsersCollection)}
}

func (s *Store) Contacts() store.ContactRepository {
	return contactRepo{coll: s.GetCollection(ContactsCollection)}
}

func (s *Store) Newsletters() store.NewsletterRepository {
	return newsletterRepo{coll: s.GetCollection(NewslettersCollection)}
}

func (s *Store) Transactional() bool {
	return s.transactional
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// WithTransaction runs fn inside a session transaction. The driver retries fn
// on transient transaction errors, so fn must be safe to re-run.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactional {
		return fn(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(txCtx context.Context) (interface{}, error) {
		return nil, fn(txCtx)
	})
	return err
}
