package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"julianmorley.ca/con-plar/storefront/internal/router"
	"julianmorley.ca/con-plar/storefront/internal/service"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
	"julianmorley.ca/con-plar/storefront/pkg/store"
	"julianmorley.ca/con-plar/storefront/pkg/store/memory"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}

	cfg := global.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is not set in environment variables")
	}

	db, closeStore := openStore(cfg)
	defer closeStore()

	var cache service.ProductCache
	if cfg.CacheEnabled {
		if c, closeCache := openCache(cfg); c != nil {
			cache = c
			defer closeCache()
		}
	}

	svc := router.Services{
		Store:      db,
		Catalog:    service.NewCatalog(db, cache),
		Cart:       service.NewCart(db, cfg.EnforceCartOwnership),
		Orders:     service.NewOrders(db),
		Account:    service.NewAccount(db),
		Engagement: service.NewEngagement(db),
		Reporter:   ai.NewReporter(ai.ConfigFromEnv()),
	}
	engine := router.NewEngine(cfg, svc, auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer))

	log.Printf("Server is running on port %s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func openStore(cfg global.Config) (store.Store, func()) {
	if cfg.StoreDriver == global.StoreDriverMemory {
		log.Println("Using in-memory store, data is lost on restart")
		return memory.New(), func() {}
	}

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	db := mongo.NewStore(client, cfg.MongoDatabase, cfg.MongoTransactions)
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	return db, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}
}

// openCache returns nil when Redis is unreachable; the catalog then reads
// straight from the store.
func openCache(cfg global.Config) (*redis.ProductCache, func()) {
	client := redis.NewClient(cfg.RedisAddress, cfg.RedisPassword)

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable at %s, caching disabled: %v", cfg.RedisAddress, err)
		_ = client.Close()
		return nil, nil
	}

	log.Printf("Connected to Redis at %s", cfg.RedisAddress)
	return redis.NewProductCache(client), func() {
		if err := client.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
}
