package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives the limiter without real sleeps.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeLimiter(interval time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := New(interval)
	l.now = func() time.Time { return clock.now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		clock.slept = append(clock.slept, d)
		clock.now = clock.now.Add(d)
		return ctx.Err()
	}
	return l, clock
}

func TestFirstCallDoesNotWait(t *testing.T) {
	l, clock := newFakeLimiter(6 * time.Second)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("first call slept %v, want none", clock.slept)
	}
}

func TestSecondCallWaitsOutInterval(t *testing.T) {
	l, clock := newFakeLimiter(6 * time.Second)
	ctx := context.Background()

	l.Wait(ctx)
	clock.now = clock.now.Add(2 * time.Second)
	l.Wait(ctx)

	if len(clock.slept) != 1 || clock.slept[0] != 4*time.Second {
		t.Fatalf("slept %v, want [4s]", clock.slept)
	}
}

func TestNoWaitAfterIntervalElapsed(t *testing.T) {
	l, clock := newFakeLimiter(6 * time.Second)
	ctx := context.Background()

	l.Wait(ctx)
	clock.now = clock.now.Add(10 * time.Second)
	l.Wait(ctx)

	if len(clock.slept) != 0 {
		t.Fatalf("slept %v, want none", clock.slept)
	}
}

func TestZeroIntervalDisablesLimiting(t *testing.T) {
	l, clock := newFakeLimiter(0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if len(clock.slept) != 0 {
		t.Fatalf("slept %v, want none", clock.slept)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	cancel()
	if err := l.Wait(ctx); err != context.Canceled {
		t.Fatalf("Wait after cancel = %v, want context.Canceled", err)
	}
}
