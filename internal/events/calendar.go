package events

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"time"

	"llm-event-predictor/internal/api"
	"llm-event-predictor/internal/logger"
)

const (
	nseBaseURL     = "https://www.nseindia.com"
	nseCalendarURL = nseBaseURL + "/api/event-calendar"
)

// CalendarFetcher pulls the upcoming corporate-event calendar from the
// NSE API. NSE gates the endpoint behind browser cookies, so every fetch
// starts with a warm-up request against the site root.
type CalendarFetcher struct {
	client  *api.Client
	retries int
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewCalendarFetcher creates a fetcher with a fresh cookie jar.
func NewCalendarFetcher() *CalendarFetcher {
	jar, _ := cookiejar.New(nil)
	return &CalendarFetcher{
		client: api.NewClient(
			api.WithTimeout(20*time.Second),
			api.WithCookieJar(jar),
			api.WithLogging(true),
		),
		retries: 4,
		sleep:   ctxSleep,
	}
}

// Fetch returns the raw calendar payload. 429/403 responses back off
// exponentially with jitter; other failures, including payloads that do
// not decode as an event list, wait a short linear delay.
func (f *CalendarFetcher) Fetch(ctx context.Context) ([]byte, error) {
	// Warm-up to collect cookies; failures here are tolerated since the
	// API call may still succeed.
	if _, err := f.client.GET(ctx, nseBaseURL, api.NSEHeaders()); err != nil {
		logger.Debug(ctx, "NSE warm-up request failed", "error", err)
	}

	// A small randomized pause between warm-up and the API call keeps the
	// cadence off the exchange's bot heuristics.
	if err := f.sleep(ctx, time.Duration(500+rand.Intn(1500))*time.Millisecond); err != nil {
		return nil, err
	}

	req := api.NewRequest(http.MethodGet, nseCalendarURL).WithContext(ctx)
	for key, value := range api.NSEHeaders() {
		req.WithHeader(key, value)
	}

	resp, err := f.client.DoWithRetry(req, &api.RetryConfig{
		MaxAttempts: f.retries,
		CheckResponse: func(r *api.Response) error {
			_, derr := Decode(r.Body)
			return derr
		},
		WaitFor: func(attempt int, err error) time.Duration {
			var statusErr *api.StatusError
			if errors.As(err, &statusErr) && (statusErr.StatusCode == 429 || statusErr.StatusCode == 403) {
				return time.Duration(1<<attempt)*time.Second + time.Duration(rand.Intn(2000))*time.Millisecond
			}
			return time.Duration(1+attempt) * time.Second
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calendar fetch: %w", err)
	}
	return resp.Body, nil
}

// FetchAndSave fetches the calendar and writes the decoded events to path.
func (f *CalendarFetcher) FetchAndSave(ctx context.Context, path string) (int, error) {
	timer := logger.StartOperation(ctx, "calendar-fetch", "path", path)
	ctx = timer.GetContext()

	payload, err := f.Fetch(ctx)
	if err != nil {
		timer.EndWithError(err)
		return 0, err
	}
	list, err := Decode(payload)
	if err != nil {
		timer.EndWithError(err)
		return 0, err
	}
	if err := Save(path, list); err != nil {
		timer.EndWithError(err)
		return 0, err
	}
	timer.End("events", len(list))
	return len(list), nil
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
