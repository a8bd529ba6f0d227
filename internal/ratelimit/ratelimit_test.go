package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock advances only when the limiter sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestLimiter(maxRequests int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := newFakeClock()
	s := New(maxRequests, window, WithNow(clock.Now), WithSleep(clock.Sleep))
	return s, clock
}

func TestAcquireUnderLimitDoesNotBlock(t *testing.T) {
	s, clock := newTestLimiter(30, 60*time.Second)

	for i := 0; i < 30; i++ {
		if err := s.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d returned error: %v", i, err)
		}
	}

	if len(clock.sleeps) != 0 {
		t.Errorf("Expected no sleeps under the limit, got %d", len(clock.sleeps))
	}
	if got := s.InFlight(); got != 30 {
		t.Errorf("Expected 30 in-flight acquisitions, got %d", got)
	}
}

func TestThirtyFifthCallPausesExactlyOnce(t *testing.T) {
	s, clock := newTestLimiter(30, 60*time.Second)

	for i := 0; i < 35; i++ {
		if err := s.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d returned error: %v", i, err)
		}
	}

	// All 35 acquisitions happen at the same fake instant, so the first
	// pause (before call 31) frees the whole window at once.
	if len(clock.sleeps) != 1 {
		t.Fatalf("Expected exactly one throttling pause, got %d", len(clock.sleeps))
	}
	if clock.sleeps[0] < 60*time.Second {
		t.Errorf("Pause %v shorter than the window", clock.sleeps[0])
	}
}

func TestTrailingWindowNeverExceedsLimit(t *testing.T) {
	const maxRequests = 5
	window := 60 * time.Second

	clock := newFakeClock()
	s := New(maxRequests, window, WithNow(clock.Now), WithSleep(clock.Sleep))

	var stamps []time.Time
	for i := 0; i < 40; i++ {
		if err := s.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d returned error: %v", i, err)
		}
		stamps = append(stamps, clock.now)
		// Uneven caller cadence.
		clock.now = clock.now.Add(time.Duration(i%7) * time.Second)
	}

	for i, ts := range stamps {
		inWindow := 0
		for _, other := range stamps {
			d := ts.Sub(other)
			if d >= 0 && d <= window {
				inWindow++
			}
		}
		if inWindow > maxRequests {
			t.Fatalf("Window ending at acquisition %d holds %d > %d acquisitions", i, inWindow, maxRequests)
		}
	}
}

func TestWaitFreesOldestSlot(t *testing.T) {
	s, clock := newTestLimiter(2, 10*time.Second)

	ctx := context.Background()
	_ = s.Acquire(ctx)
	clock.now = clock.now.Add(4 * time.Second)
	_ = s.Acquire(ctx)
	clock.now = clock.now.Add(2 * time.Second)

	// Third acquisition: oldest stamp is 6s old, so the wait must cover
	// the remaining 4s plus epsilon.
	if err := s.Acquire(ctx); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(clock.sleeps) != 1 {
		t.Fatalf("Expected one sleep, got %d", len(clock.sleeps))
	}
	want := 4*time.Second + epsilon
	if clock.sleeps[0] != want {
		t.Errorf("Expected sleep of %v, got %v", want, clock.sleeps[0])
	}
}

func TestAcquireReturnsOnCancelledContext(t *testing.T) {
	clock := newFakeClock()
	s := New(1, time.Minute, WithNow(clock.Now), WithSleep(func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}))

	ctx := context.Background()
	if err := s.Acquire(ctx); err != nil {
		t.Fatalf("First acquire should not block: %v", err)
	}
	if err := s.Acquire(ctx); err == nil {
		t.Fatal("Expected cancellation error from blocked acquire")
	}
}
