// Package lock provides domain.Locker implementations: a Redis lease for multi-instance
// deployments and an in-process one for single-instance runs and tests.
package lock

import (
	"context"
	"fmt"
	"time"

	"campusengage/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// RedisClient is the subset of the go-redis client used by RedisLocker.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker takes leases with SET NX PX. Each lease carries a random owner token so that only
// the holder can release it.
type RedisLocker struct {
	client   RedisClient
	prefix   string
	newToken func() string
}

// NewRedisLocker returns a RedisLocker whose keys are namespaced under prefix.
func NewRedisLocker(client RedisClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, newToken: uuid.NewString}
}

// TryLock implements domain.Locker.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (domain.UnlockFunc, bool, error) {
	k := l.prefix + key
	token := l.newToken()

	acquired, err := l.client.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		n, err := l.client.Eval(ctx, releaseScript, []string{k}, token).Int()
		if err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		if n == 0 {
			return domain.ErrLockNotHeld
		}
		return nil
	}
	return unlock, true, nil
}
