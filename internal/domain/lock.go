package domain

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotHeld is returned by an unlock func when the lease expired or was taken over.
var ErrLockNotHeld = errors.New("lock not held")

// UnlockFunc releases a lease obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker hands out short leases on string keys. A lease expires after ttl even if never released.
type Locker interface {
	// TryLock does not block. acquired is false when another holder owns key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock UnlockFunc, acquired bool, err error)
}
