package ops

import (
	"context"
	"sync"
	"time"

	"github.com/litesuggar/omikuji/internal/errors"
)

// KeyLocks serializes corpus merges per (level, theme) key. Acquisition is
// bounded: a caller that cannot take the lock within the timeout gets
// LOCK_TIMEOUT instead of queueing indefinitely behind a slow merge.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{} // capacity 1
	refs int
}

// NewKeyLocks creates an empty lock table.
func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: make(map[string]*keyLock)}
}

// Acquire takes the lock for (level, theme), waiting at most timeout.
// On success it returns a release func the caller must invoke exactly once.
// A timeout or context cancellation returns LOCK_TIMEOUT.
func (k *KeyLocks) Acquire(ctx context.Context, level, theme string, timeout time.Duration) (func(), error) {
	key := level + "\x00" + theme

	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			k.unref(key, l)
		}, nil
	case <-timer.C:
		k.unref(key, l)
		return nil, errors.NewLockTimeout(level, theme)
	case <-ctx.Done():
		k.unref(key, l)
		return nil, errors.NewLockTimeout(level, theme)
	}
}

// unref drops one reference and removes the table entry once nobody holds
// or waits on it, so the table does not grow with the key space.
func (k *KeyLocks) unref(key string, l *keyLock) {
	k.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
