package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

const (
	lockKeyPrefix = "checkout:lock:"
	retryInterval = 25 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisLocker serializes holders across processes. ttl bounds how long a
// crashed holder can block the key.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *redisLocker {
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	const op = "locker.redisLocker.Lock"

	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%s: %w: %w", op, model.ErrLockTimeout, ctx.Err())
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w: %w", op, model.ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be done; release on a fresh one.
			relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()

			if err := releaseScript.Run(relCtx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				logger.Warn(ctx, "release redis lock", logger.String("key", redisKey), logger.ErrorF(err))
			}
		})
	}, nil
}
