package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_FirstRequestImmediate(t *testing.T) {
	l := NewHostLimiter(time.Second)

	start := time.Now()
	if err := l.Wait(context.Background(), "a.example.com"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first request waited %v", elapsed)
	}
}

func TestWait_EnforcesDelayPerHost(t *testing.T) {
	l := NewHostLimiter(100 * time.Millisecond)
	ctx := context.Background()

	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("second request to same host waited only %v", elapsed)
	}
}

func TestWait_DifferentHostsIndependent(t *testing.T) {
	l := NewHostLimiter(time.Second)
	ctx := context.Background()

	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "b.example.com"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different host waited %v", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := NewHostLimiter(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	if err := l.Wait(ctx, "a.example.com"); err == nil {
		t.Error("expected context error while waiting out the delay")
	}
}

// countingFetcher records the URLs it is asked for.
type countingFetcher struct {
	urls []string
}

func (c *countingFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	c.urls = append(c.urls, url)
	return "ok", nil
}

func TestLimitedFetcher_KeysByHost(t *testing.T) {
	inner := &countingFetcher{}
	l := NewHostLimiter(150 * time.Millisecond)
	f := NewLimitedFetcher(inner, l)
	ctx := context.Background()

	// Two pages on the same host share the delay; a third host does not.
	start := time.Now()
	if _, err := f.FetchPage(ctx, "https://a.example.com/jobs?page=1"); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if _, err := f.FetchPage(ctx, "https://b.example.com/jobs?page=1"); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("cross-host fetches waited %v", elapsed)
	}

	start = time.Now()
	if _, err := f.FetchPage(ctx, "https://a.example.com/jobs/42"); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("same-host fetch waited only %v", elapsed)
	}

	if len(inner.urls) != 3 {
		t.Errorf("inner saw %d fetches, want 3", len(inner.urls))
	}
}
