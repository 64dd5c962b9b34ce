package lock

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// expiredLockSweepInterval is how often the background sweep drops
// expired entries that were never released.
const expiredLockSweepInterval = 30 * time.Second

// MemoryLocker is a process-local Locker for single-node deployments.
// Login-code issuance and upload serialization work fine with it as long
// as only one server instance runs; it holds nothing across restarts and
// shares nothing between instances.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]heldLock
}

type heldLock struct {
	token     string
	expiresAt time.Time
}

// NewMemoryLocker creates an in-memory locker and starts its expiry sweep.
func NewMemoryLocker() *MemoryLocker {
	ml := &MemoryLocker{
		held: make(map[string]heldLock),
	}

	go ml.sweepLoop()

	return ml
}

func (m *MemoryLocker) sweepLoop() {
	ticker := time.NewTicker(expiredLockSweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.sweep()
	}
}

func (m *MemoryLocker) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, entry := range m.held {
		if now.After(entry.expiresAt) {
			delete(m.held, key)
		}
	}
}

func newLockToken() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

// Acquire takes the lock if it is free or its previous holder's TTL has
// lapsed. It never blocks.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	if entry, exists := m.held[key]; exists && now.Before(entry.expiresAt) {
		return false, nil
	}

	m.held[key] = heldLock{
		token:     newLockToken(),
		expiresAt: now.Add(ttl),
	}

	return true, nil
}

// AcquireWithRetry retries Acquire up to maxRetries times, sleeping
// retryDelay between attempts. Cancellation of ctx aborts the wait.
func (m *MemoryLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	for attempt := 0; ; attempt++ {
		acquired, err := m.Acquire(ctx, key, ttl)
		if acquired || err != nil {
			return acquired, err
		}
		if attempt >= maxRetries {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// Release frees the lock. Returns false when the key was not held.
func (m *MemoryLocker) Release(ctx context.Context, key string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.held[key]; !exists {
		return false, nil
	}
	delete(m.held, key)
	return true, nil
}

// Extend pushes out the expiry of a still-held lock. Returns false when
// the lock is gone or already expired.
func (m *MemoryLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.held[key]
	if !exists || time.Now().After(entry.expiresAt) {
		delete(m.held, key)
		return false, nil
	}

	entry.expiresAt = time.Now().Add(ttl)
	m.held[key] = entry
	return true, nil
}

// IsHeld reports whether the key is currently locked and unexpired.
func (m *MemoryLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.held[key]
	if !exists {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.held, key)
		return false, nil
	}

	return true, nil
}

var _ Locker = (*MemoryLocker)(nil)
