package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"parking-system/internal/logging"
)

const (
	lockNS = "parking:v1:lock"

	DefaultLockTTL  = 10 * time.Second
	DefaultLockWait = 5 * time.Second
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func KeyLock(key string) string {
	return fmt.Sprintf("%s:%s", lockNS, key)
}

// Locker is a parking.Locker shared by every instance using the same Redis.
type Locker struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewLocker(rdb *redis.Client, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &Locker{rdb: rdb, ttl: ttl, wait: wait}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	const op = "redis.Lock"

	redisKey := KeyLock(key)
	token := uuid.NewString()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return false, backoff.Permanent(err)
		}
		if !ok {
			return false, ErrLockNotAcquired
		}
		return true, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(l.wait),
	)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, key, err)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true

		// The caller's context may already be done by the time it unlocks.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil {
			logging.Error(ctx, "failed to release lock", "key", key, "error", err)
		}
	}, nil
}
