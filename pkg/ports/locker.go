package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DriverLocker.
type UnlockFunc func(ctx context.Context) error

// DriverLocker guarantees a single driver per key across processes.
// A Doer must never be stepped from two execution contexts at once; when the
// same plan may be started on several hosts, drivers take this lock first.
type DriverLocker interface {
	// Lock blocks until the lock is acquired or ctx is done.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
