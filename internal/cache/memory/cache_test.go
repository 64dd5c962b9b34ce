package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gwan-project/landing-auth/internal/repository"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c := NewCache()
	t.Cleanup(c.Stop)
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get() = %q, want %q", got, "value")
	}
}

func TestExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "key"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
	exists, err := c.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true after expiry")
	}
}

func TestSetNX(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	set, err := c.SetNX(ctx, "key", []byte("a"), 0)
	if err != nil || !set {
		t.Fatalf("SetNX() = %v, %v, want true, nil", set, err)
	}
	set, err = c.SetNX(ctx, "key", []byte("b"), 0)
	if err != nil || set {
		t.Fatalf("second SetNX() = %v, %v, want false, nil", set, err)
	}

	got, _ := c.Get(ctx, "key")
	if string(got) != "a" {
		t.Errorf("value = %q, want original %q", got, "a")
	}
}

func TestIncrement(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Increment(ctx, "counter", 1)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if got != want {
			t.Errorf("Increment() = %d, want %d", got, want)
		}
	}

	got, err := c.Decrement(ctx, "counter", 2)
	if err != nil {
		t.Fatalf("Decrement() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Decrement() = %d, want 1", got)
	}
}

func TestIncrementKeepsWindow(t *testing.T) {
	// Rate-limit counters set a window once with Expire; later increments
	// must not extend it.
	c := newTestCache(t)
	ctx := context.Background()

	if _, err := c.Increment(ctx, "counter", 1); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if err := c.Expire(ctx, "counter", 20*time.Millisecond); err != nil {
		t.Fatalf("Expire() error = %v", err)
	}
	if _, err := c.Increment(ctx, "counter", 1); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	// The window has passed, so the counter restarts.
	got, err := c.Increment(ctx, "counter", 1)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Increment() after window = %d, want 1", got)
	}
}
