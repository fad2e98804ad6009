package lock

import (
	"context"
	"sync"
	"time"

	"campusengage/internal/domain"
)

// LocalLocker is an in-process domain.Locker. Leases expire after their ttl like the Redis ones.
type LocalLocker struct {
	mu     sync.Mutex
	leases map[string]localLease
	seq    uint64
	now    func() time.Time
}

type localLease struct {
	owner   uint64
	expires time.Time
}

// NewLocalLocker returns an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{leases: map[string]localLease{}, now: time.Now}
}

// TryLock implements domain.Locker.
func (l *LocalLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (domain.UnlockFunc, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.leases[key]; ok && now.Before(lease.expires) {
		return nil, false, nil
	}
	l.seq++
	owner := l.seq
	l.leases[key] = localLease{owner: owner, expires: now.Add(ttl)}

	unlock := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		lease, ok := l.leases[key]
		if !ok || lease.owner != owner {
			return domain.ErrLockNotHeld
		}
		delete(l.leases, key)
		return nil
	}
	return unlock, true, nil
}
