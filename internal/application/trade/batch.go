package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// batchGuard makes a keyed bulk batch apply at most once per TTL.
// A zero guard, or a blank key, runs every batch.
type batchGuard struct {
	store shared.IdempotencyStore
	ttl   time.Duration
}

func batchKey(kind string, tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("bulk:%s:%s:%s", kind, tenantID, key)
}

// run marks the key before fn runs and forgets it again when fn fails, so a
// rolled-back batch can be resubmitted.
func (g batchGuard) run(ctx context.Context, tenantID uuid.UUID, kind, key string, fn func() (*trade.BulkResult, error)) (*trade.BulkResult, error) {
	key = strings.TrimSpace(key)
	if g.store == nil || key == "" {
		return fn()
	}
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}

	full := batchKey(kind, tenantID, key)
	fresh, err := g.store.MarkProcessed(ctx, full, g.ttl)
	if err != nil {
		return nil, shared.NewUnexpectedError(fmt.Errorf("mark batch %s: %w", key, err))
	}
	if !fresh {
		logger.L(ctx).Info("bulk batch already applied", zap.String("kind", kind), zap.String("batch_key", key))
		return &trade.BulkResult{Replayed: true}, nil
	}

	result, err := fn()
	if err != nil {
		if ferr := g.store.Forget(ctx, full); ferr != nil {
			logger.L(ctx).Warn("failed to release batch key", zap.String("batch_key", key), zap.Error(ferr))
		}
		return nil, err
	}
	return result, nil
}
