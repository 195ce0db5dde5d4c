package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cardledger/backend/internal/models"
)

// SummaryCache keeps each owner's dashboard summary in redis. A nil
// client disables caching.
//
// Entries are keyed by a per-owner generation that every ledger write
// bumps, so a summary computed before a write can only land under a
// generation nobody reads any more.
type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSummaryCache(rdb *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: ttl}
}

func generationKey(ownerID int64) string {
	return fmt.Sprintf("summary:%d:gen", ownerID)
}

func summaryKey(ownerID, gen int64) string {
	return fmt.Sprintf("summary:%d:%d", ownerID, gen)
}

// Get returns the cached summary, or nil on a miss or any cache error,
// together with the generation a fresh summary must be stored under.
// A negative generation means the result must not be cached.
func (c *SummaryCache) Get(ctx context.Context, ownerID int64) (*models.LedgerSummary, int64) {
	if c == nil || c.rdb == nil {
		return nil, -1
	}

	gen, err := c.rdb.Get(ctx, generationKey(ownerID)).Int64()
	if err == redis.Nil {
		gen = 0
	} else if err != nil {
		log.Printf("[CACHE] summary generation read failed for user %d: %v", ownerID, err)
		return nil, -1
	}

	raw, err := c.rdb.Get(ctx, summaryKey(ownerID, gen)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] summary read failed for user %d: %v", ownerID, err)
		}
		return nil, gen
	}

	var summary models.LedgerSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		log.Printf("[CACHE] discarding corrupt summary for user %d: %v", ownerID, err)
		return nil, gen
	}
	return &summary, gen
}

// Set stores a summary under the generation returned by Get
func (c *SummaryCache) Set(ctx context.Context, ownerID, gen int64, summary *models.LedgerSummary) {
	if c == nil || c.rdb == nil || gen < 0 {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, summaryKey(ownerID, gen), string(data), c.ttl).Err(); err != nil {
		log.Printf("[CACHE] summary write failed for user %d: %v", ownerID, err)
	}
}

// Invalidate moves the owner to a new generation after any balance or
// ledger change. Entries of older generations expire on their own.
func (c *SummaryCache) Invalidate(ctx context.Context, ownerID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, generationKey(ownerID)).Err(); err != nil {
		log.Printf("[CACHE] summary invalidation failed for user %d: %v", ownerID, err)
	}
}
