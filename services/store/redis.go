package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

const seenSetKey = "okazje:seen"

// RedisSeenStore implements SeenStore on a Redis sorted set. Scores
// are insertion timestamps, so pruning removes the lowest-ranked
// (oldest) members first.
type RedisSeenStore struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisSeenStore creates a Redis-backed seen store
func NewRedisSeenStore(ctx context.Context, addr string, db int) *RedisSeenStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisSeenStore{
		client: client,
		ctx:    ctx,
	}
}

// Has reports whether url has been seen
func (s *RedisSeenStore) Has(url string) (bool, error) {
	err := s.client.ZScore(s.ctx, seenSetKey, url).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.NewPersistence("failed to check seen-set", err)
	}
	return true, nil
}

// Add marks url as seen. ZADD NX keeps the original timestamp when the
// member already exists, preserving insertion order for eviction.
func (s *RedisSeenStore) Add(url string) error {
	now := float64(nowNano())
	if err := s.client.ZAddNX(s.ctx, seenSetKey, redis.Z{Score: now, Member: url}).Err(); err != nil {
		return errors.NewPersistence("failed to add to seen-set", err)
	}

	size, err := s.client.ZCard(s.ctx, seenSetKey).Result()
	if err != nil {
		return errors.NewPersistence("failed to size seen-set", err)
	}

	if size > HighWaterMark {
		// Remove the oldest entries down to the prune target
		if err := s.client.ZRemRangeByRank(s.ctx, seenSetKey, 0, size-PruneTarget-1).Err(); err != nil {
			return errors.NewPersistence("failed to prune seen-set", err)
		}
	}

	return nil
}

// Len returns the current size of the set
func (s *RedisSeenStore) Len() (int, error) {
	size, err := s.client.ZCard(s.ctx, seenSetKey).Result()
	if err != nil {
		return 0, errors.NewPersistence("failed to size seen-set", err)
	}
	return int(size), nil
}

// Close closes the Redis connection
func (s *RedisSeenStore) Close() error {
	return s.client.Close()
}

func nowNano() int64 {
	return time.Now().UnixNano()
}
