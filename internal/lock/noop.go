package lock

import (
	"context"
	"time"
)

// NoOpLocker grants every acquisition. Login-code issuance is
// last-write-wins anyway, so tests and single-request tools can run
// without real serialization.
type NoOpLocker struct{}

// NewNoOpLocker creates a locker that never contends.
func NewNoOpLocker() *NoOpLocker {
	return &NoOpLocker{}
}

// Acquire always succeeds.
func (n *NoOpLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, ctx.Err()
}

// AcquireWithRetry always succeeds on the first attempt.
func (n *NoOpLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return true, ctx.Err()
}

// Release always reports the lock as released.
func (n *NoOpLocker) Release(ctx context.Context, key string) (bool, error) {
	return true, ctx.Err()
}

// Extend always reports the lock as extended.
func (n *NoOpLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, ctx.Err()
}

// IsHeld always reports no lock held.
func (n *NoOpLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	return false, ctx.Err()
}

var _ Locker = (*NoOpLocker)(nil)
