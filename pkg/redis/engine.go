package redis

import (
	"github.com/redis/go-redis/v9"
)

// NewClient builds a client for the cache. The caller owns Close.
func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
}
