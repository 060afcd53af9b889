package redis

import (
	"context"

	"github.com/go-redis/redis/v8"

	"fleet-leak-consumer/internal/config"
)

// Client is an alias for the go-redis client type.
type Client = redis.Client

// NewClient creates a Redis client.
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping tests the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	return client.Close()
}
