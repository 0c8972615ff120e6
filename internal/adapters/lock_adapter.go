package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/credential"
	"github.com/fleetboss/fleet-service/pkg/metrics"
)

const (
	lockRetryInterval  = 50 * time.Millisecond
	lockReleaseTimeout = 2 * time.Second
)

// LockClient - операции Redis, нужные для блокировки
type LockClient interface {
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

// LockAdapter реализует credential.Locker поверх Redis SET NX PX.
// Владелец блокировки - случайный uuid, освобождается только своя блокировка.
type LockAdapter struct {
	redis  LockClient
	retry  time.Duration
	logger *zap.Logger
}

// NewLockAdapter создает адаптер блокировок обновления токенов
func NewLockAdapter(redis LockClient, logger *zap.Logger) credential.Locker {
	return &LockAdapter{redis: redis, retry: lockRetryInterval, logger: logger}
}

// Acquire ждет блокировку не дольше ttl: к этому моменту чужая блокировка истекает сама
func (a *LockAdapter) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	owner := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, ttl+a.retry)
	defer cancel()

	for {
		ok, err := a.redis.AcquireLock(waitCtx, key, owner, ttl)
		if err != nil {
			metrics.RecordRedisOperation("lock_acquire", "error")
			return nil, err
		}
		if ok {
			metrics.RecordRedisOperation("lock_acquire", "success")
			return a.releaser(key, owner), nil
		}

		select {
		case <-waitCtx.Done():
			metrics.RecordRedisOperation("lock_acquire", "timeout")
			return nil, fmt.Errorf("lock %s is busy: %w", key, waitCtx.Err())
		case <-time.After(a.retry):
		}
	}
}

func (a *LockAdapter) releaser(key, owner string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()

		if err := a.redis.ReleaseLock(ctx, key, owner); err != nil {
			metrics.RecordRedisOperation("lock_release", "error")
			a.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			return
		}
		metrics.RecordRedisOperation("lock_release", "success")
	}
}
