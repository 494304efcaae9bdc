package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

// HostLimiter enforces a minimum delay between consecutive requests to the
// same career-site host. The delay is a source-site politeness requirement,
// not a performance knob: skipping it risks getting the scraper blocked.
type HostLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: hostname
	minDelay time.Duration
}

// NewHostLimiter creates a limiter that enforces minDelay between requests
// to the same host.
func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to host.
// Returns an error if the context is cancelled while waiting.
func (r *HostLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	last, ok := r.lastCall[host]
	now := time.Now()

	if !ok {
		// First request for this host — no wait needed.
		r.lastCall[host] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		r.lastCall[host] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[host] = time.Now()
	r.mu.Unlock()

	return nil
}

// LimitedFetcher is a decorator that waits out the host delay before
// delegating to the wrapped PageFetcher. All fetchers in a process share
// one limiter so the delay holds across pipeline phases.
type LimitedFetcher struct {
	inner   model.PageFetcher
	limiter *HostLimiter
}

// NewLimitedFetcher wraps a PageFetcher with host-level rate limiting.
func NewLimitedFetcher(inner model.PageFetcher, limiter *HostLimiter) *LimitedFetcher {
	return &LimitedFetcher{inner: inner, limiter: limiter}
}

// FetchPage waits for the limiter to allow a request to the page's host,
// then delegates to the wrapped fetcher.
func (f *LimitedFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = u.Host
	}
	if err := f.limiter.Wait(ctx, host); err != nil {
		return "", err
	}
	return f.inner.FetchPage(ctx, pageURL)
}
