package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// DefaultBatchKeyPrefix namespaces batch keys in a shared Redis
const DefaultBatchKeyPrefix = "retail:batch:"

// RedisBatchStore remembers bulk batch keys in Redis so every instance sees
// the same claims. A claim is a SETNX with expiry.
type RedisBatchStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBatchStore connects to Redis and verifies the connection with PING
func NewRedisBatchStore(ctx context.Context, cfg config.RedisConfig) (*RedisBatchStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return NewRedisBatchStoreWithClient(client, DefaultBatchKeyPrefix), nil
}

// NewRedisBatchStoreWithClient wraps an existing client
func NewRedisBatchStoreWithClient(client *redis.Client, prefix string) *RedisBatchStore {
	if prefix == "" {
		prefix = DefaultBatchKeyPrefix
	}
	return &RedisBatchStore{client: client, prefix: prefix}
}

// MarkProcessed claims key until ttl elapses. It returns false while a claim exists.
func (s *RedisBatchStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim batch key: %w", err)
	}
	return ok, nil
}

// IsProcessed reports whether key is claimed
func (s *RedisBatchStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check batch key: %w", err)
	}
	return n > 0, nil
}

// Forget drops the claim on key
func (s *RedisBatchStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release batch key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisBatchStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisBatchStore)(nil)
