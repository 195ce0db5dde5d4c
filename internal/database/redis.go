package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/cardledger/backend/internal/config"
)

// NewRedis returns a connected client, or nil when redis is unreachable.
// Callers treat a nil client as "no cache".
func NewRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[CACHE] redis connection failed, continuing without redis: %v", err)
		rdb.Close()
		return nil
	}

	log.Println("[CACHE] redis connection established")
	return rdb
}
