package ratelimit

import (
	"context"
	"sync"
	"time"
)

// epsilon is added to every computed wait so the oldest timestamp is
// strictly outside the window when the caller wakes up.
const epsilon = 100 * time.Millisecond

// SlidingWindow enforces at most maxRequests acquisitions within any
// trailing window. It keeps a FIFO queue of acquisition timestamps; time
// comparisons use the monotonic clock carried by time.Time.
type SlidingWindow struct {
	maxRequests int
	window      time.Duration

	mu     sync.Mutex
	stamps []time.Time

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithNow overrides the clock source.
func WithNow(now func() time.Time) Option {
	return func(s *SlidingWindow) {
		s.now = now
	}
}

// WithSleep overrides the suspension primitive.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *SlidingWindow) {
		s.sleep = sleep
	}
}

// New creates a limiter allowing maxRequests acquisitions per window.
func New(maxRequests int, window time.Duration, opts ...Option) *SlidingWindow {
	s := &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		sleep:       ctxSleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire blocks until issuing one more operation would not exceed the
// limit, then records the acquisition. Returns early only if ctx is
// cancelled during the wait. Safe for concurrent use; blocked callers are
// served in the order their waits expire.
func (s *SlidingWindow) Acquire(ctx context.Context) error {
	for {
		s.mu.Lock()
		now := s.now()
		s.evict(now)
		if len(s.stamps) < s.maxRequests {
			s.stamps = append(s.stamps, now)
			s.mu.Unlock()
			return nil
		}
		wait := s.window - now.Sub(s.stamps[0]) + epsilon
		s.mu.Unlock()

		if wait < epsilon {
			wait = epsilon
		}
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
		// Re-check under the lock: another caller may have taken the
		// freed slot while we slept.
	}
}

// InFlight returns how many acquisitions are inside the current window.
func (s *SlidingWindow) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(s.now())
	return len(s.stamps)
}

// evict drops timestamps older than now minus the window. Caller holds mu.
func (s *SlidingWindow) evict(now time.Time) {
	cut := 0
	for cut < len(s.stamps) && now.Sub(s.stamps[cut]) > s.window {
		cut++
	}
	if cut > 0 {
		s.stamps = append(s.stamps[:0], s.stamps[cut:]...)
	}
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
