// Package runlock keeps concurrent benchmark processes from overlapping.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when the lock is still held when the timeout expires.
var ErrLocked = errors.New("lock file is held by another process")

const retryDelay = 50 * time.Millisecond

// Lock is an acquired exclusive file lock. A nil Lock is valid and releases
// nothing.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes an exclusive lock on path, retrying until timeout elapses.
// An empty path disables locking. A timeout <= 0 makes a single attempt.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if path == "" {
		return nil, nil
	}
	fl := flock.New(path)

	if timeout <= 0 {
		ok, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return &Lock{fl: fl}, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ok, err := fl.TryLockContext(lockCtx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.fl.Path()
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
