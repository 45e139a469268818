package global

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool parses a boolean variable, falling back when unset or unparsable
func GetEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func GetEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetMongoURI() string {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is not set in environment variables")
	}
	return mongoURI
}

func GetDatabaseName() string {
	return GetEnvOrDefault("MONGODB_DATABASE", "storefront")
}

// Config gathers every runtime setting read from the environment.
type Config struct {
	Port                 string
	Env                  string
	StoreDriver          string
	MongoURI             string
	MongoDatabase        string
	MongoTransactions    bool
	CacheEnabled         bool
	RedisAddress         string
	RedisPassword        string
	JWTSecret            string
	JWTIssuer            string
	AdminKeyHash         string
	EnforceCartOwnership bool
	CORSOrigins          []string
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// LoadConfig reads the environment. MONGODB_URI is mandatory unless
// STORE_DRIVER=memory.
func LoadConfig() Config {
	driver := GetEnvOrDefault("STORE_DRIVER", StoreDriverMongo)
	mongoURI := ""
	if driver != StoreDriverMemory {
		mongoURI = GetMongoURI()
	}

	return Config{
		Port:                 GetEnvOrDefault("PORT", "8000"),
		Env:                  GetEnvOrDefault("ENV", "development"),
		StoreDriver:          driver,
		MongoURI:             mongoURI,
		MongoDatabase:        GetDatabaseName(),
		MongoTransactions:    GetEnvBool("MONGODB_TRANSACTIONS", true),
		CacheEnabled:         GetEnvBool("CACHE_ENABLED", true),
		RedisAddress:         GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:        GetEnvOrDefault("REDIS_PASSWORD", ""),
		JWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:            os.Getenv("AUTH_JWT_ISSUER"),
		AdminKeyHash:         os.Getenv("ADMIN_KEY_HASH"),
		EnforceCartOwnership: GetEnvBool("CART_ENFORCE_OWNERSHIP", true),
		CORSOrigins: GetEnvList("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),
	}
}
