// Package fetch wraps external numeric lookups with bounded retries,
// jittered exponential backoff and a per-run keyed cache. A fetcher never
// returns an error: exhausted retries degrade to "not found" and the
// pipeline carries on with the feature absent.
package fetch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"llm-event-predictor/internal/logger"
	"llm-event-predictor/internal/store"
)

// LookupFunc performs one attempt of an external lookup. Any error it
// returns is treated as transient (timeouts, 429/403, partial payloads)
// and retried under the fetcher's policy.
type LookupFunc[T any] func(ctx context.Context, key string) (T, error)

type cached[T any] struct {
	value T
	found bool
}

// Fetcher retries a LookupFunc with exponential backoff. The cache is
// scoped to the Fetcher instance, so constructing one per pipeline run
// keeps symbol lookups from leaking across runs.
type Fetcher[T any] struct {
	name   string
	lookup LookupFunc[T]
	policy store.RetryPolicy

	mu    sync.Mutex
	cache map[string]cached[T]

	jitter func() time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option[T any] func(*Fetcher[T])

// WithJitter overrides the jitter source.
func WithJitter[T any](jitter func() time.Duration) Option[T] {
	return func(f *Fetcher[T]) {
		f.jitter = jitter
	}
}

// WithSleep overrides the backoff suspension primitive.
func WithSleep[T any](sleep func(ctx context.Context, d time.Duration) error) Option[T] {
	return func(f *Fetcher[T]) {
		f.sleep = sleep
	}
}

// New creates a fetcher for one external source. name appears in logs.
func New[T any](name string, lookup LookupFunc[T], policy store.RetryPolicy, opts ...Option[T]) *Fetcher[T] {
	bound := policy.Jitter()
	f := &Fetcher[T]{
		name:   name,
		lookup: lookup,
		policy: policy,
		cache:  make(map[string]cached[T]),
		jitter: func() time.Duration {
			if bound <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(2*bound))) - bound
		},
		sleep: ctxSleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the value for key, retrying transient failures. The
// second return is false when the value could not be obtained; repeated
// keys are served from the cache, including cached misses.
func (f *Fetcher[T]) Fetch(ctx context.Context, key string) (T, bool) {
	f.mu.Lock()
	if c, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return c.value, c.found
	}
	f.mu.Unlock()

	value, found := f.fetchWithRetry(ctx, key)

	f.mu.Lock()
	f.cache[key] = cached[T]{value: value, found: found}
	f.mu.Unlock()
	return value, found
}

func (f *Fetcher[T]) fetchWithRetry(ctx context.Context, key string) (T, bool) {
	var zero T
	for attempt := 1; attempt <= f.policy.MaxRetries; attempt++ {
		value, err := f.lookup(ctx, key)
		if err == nil {
			return value, true
		}

		if attempt == f.policy.MaxRetries {
			logger.Warn(ctx, "Lookup failed after all attempts",
				"source", f.name, "key", key, "attempts", f.policy.MaxRetries, "error", err)
			return zero, false
		}

		delay := f.backoff(attempt)
		logger.Debug(ctx, "Lookup failed, retrying",
			"source", f.name, "key", key, "attempt", attempt, "delay", delay, "error", err)
		if serr := f.sleep(ctx, delay); serr != nil {
			// Cancelled mid-backoff: degrade, do not raise.
			return zero, false
		}
	}
	return zero, false
}

// backoff computes baseDelay * factor^(attempt-1) plus jitter, clamped to
// non-negative.
func (f *Fetcher[T]) backoff(attempt int) time.Duration {
	delay := float64(f.policy.BaseDelay())
	for i := 1; i < attempt; i++ {
		delay *= f.policy.BackoffFactor
	}
	d := time.Duration(delay) + f.jitter()
	if d < 0 {
		d = 0
	}
	return d
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
