package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/config"
	"go.uber.org/zap"
)

const inMemorySweepInterval = 5 * time.Minute

// Option configures NewBatchStore
type Option func(*options)

type options struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report the chosen store
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Fallback is on by default.
func WithInMemoryFallback(allow bool) Option {
	return func(o *options) {
		o.allowFallback = allow
	}
}

// NewBatchStore returns the Redis store when Redis is enabled and reachable,
// otherwise the in-memory store if fallback is allowed.
func NewBatchStore(ctx context.Context, cfg config.RedisConfig, opts ...Option) (shared.IdempotencyStore, error) {
	o := options{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		o.logger.Info("redis disabled, using in-memory batch store")
		return NewInMemoryBatchStore(inMemorySweepInterval), nil
	}

	store, err := NewRedisBatchStore(ctx, cfg)
	if err == nil {
		o.logger.Info("using redis batch store", zap.String("addr", cfg.Addr()))
		return store, nil
	}
	if !o.allowFallback {
		return nil, fmt.Errorf("redis required for batch keys but unavailable: %w", err)
	}
	o.logger.Warn("redis unavailable, falling back to in-memory batch store; batch keys are not shared between instances",
		zap.Error(err),
	)
	return NewInMemoryBatchStore(inMemorySweepInterval), nil
}
