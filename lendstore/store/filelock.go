package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// ErrLockBusy means another process kept the snapshot lock for every retry.
var ErrLockBusy = errors.New("snapshot file is locked by another process")

// FileLock is an exclusive advisory lock beside the snapshot file.
type FileLock interface {
	// TryLockContext reports false without error when another holder has the lock.
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)
	Unlock() error
}

// FileLockFactory creates the lock for a snapshot path.
type FileLockFactory interface {
	New(path string) FileLock
}

// FlockFactory creates gofrs/flock locks. *flock.Flock satisfies FileLock as is.
type FlockFactory struct{}

// New implements FileLockFactory.
func (FlockFactory) New(path string) FileLock {
	return flock.New(path)
}

// lockPath is where the lock for the snapshot at path lives.
func lockPath(path string) string {
	return path + ".lock"
}

// withLock runs fn holding lock, trying lockMaxRetries times within lockTimeout.
func withLock(lock FileLock, fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	if err := acquire(ctx, lock); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

func acquire(ctx context.Context, lock FileLock) error {
	for range lockMaxRetries {
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrLockBusy, ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrLockBusy, lockMaxRetries)
}
