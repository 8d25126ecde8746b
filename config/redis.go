package config

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"apiprovider.GO/core/cache"
)

// RedisClient is a global Redis client instance
var RedisClient *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       0,
	})
}

// NewCacheStore returns a Redis-backed response cache when RedisClient answers a
// ping, otherwise an in-memory one. The bool reports whether Redis is used.
func NewCacheStore() (cache.Store, bool) {
	if RedisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if RedisClient.Ping(ctx).Err() == nil {
			return cache.NewRedisStore(RedisClient, getenv("REDIS_PREFIX", "apiprovider:")), true
		}
		RedisClient = nil // Disable Redis if not reachable
	}
	return cache.NewCache(), false
}
