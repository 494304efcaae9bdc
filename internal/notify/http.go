// Package notify implements the outbound search-engine ping side channel.
// It is strictly best-effort: reconciliation never depends on it, and an
// unreachable endpoint costs nothing but a log line.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

// Ensure HTTPPinger implements model.Pinger.
var _ model.Pinger = (*HTTPPinger)(nil)

// DefaultBatchSize is the endpoint's per-submission URL cap.
const DefaultBatchSize = 50

// DefaultBatchDelay spaces out consecutive batch submissions.
const DefaultBatchDelay = 2 * time.Second

// DefaultTrackingWindow is how long a submitted URL counts as already
// notified: re-submitting inside the window is success without a request.
const DefaultTrackingWindow = 24 * time.Hour

// HTTPPinger submits URL batches to a search-engine notification endpoint.
type HTTPPinger struct {
	endpoint       string
	key            string
	batchSize      int
	batchDelay     time.Duration
	trackingWindow time.Duration
	httpClient     *http.Client
	log            model.PingLog
	logger         *slog.Logger
}

// NewHTTPPinger returns a pinger for the given endpoint. Zero-valued knobs
// fall back to the package defaults.
func NewHTTPPinger(endpoint, key string, batchSize int, batchDelay, trackingWindow time.Duration, pingLog model.PingLog, httpClient *http.Client, logger *slog.Logger) *HTTPPinger {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchDelay <= 0 {
		batchDelay = DefaultBatchDelay
	}
	if trackingWindow <= 0 {
		trackingWindow = DefaultTrackingWindow
	}
	return &HTTPPinger{
		endpoint:       endpoint,
		key:            key,
		batchSize:      batchSize,
		batchDelay:     batchDelay,
		trackingWindow: trackingWindow,
		httpClient:     httpClient,
		log:            pingLog,
		logger:         logger,
	}
}

type pingPayload struct {
	Key  string   `json:"key,omitempty"`
	Type string   `json:"type"`
	URLs []string `json:"urlList"`
}

// Ping submits urls in batches, skipping any URL already notified with the
// same kind inside the tracking window. It returns an error only when every
// batch fails; individual batch failures are logged.
func (p *HTTPPinger) Ping(ctx context.Context, urls []string, kind model.PingKind) error {
	fresh := p.filterTracked(ctx, urls, kind)
	if len(fresh) == 0 {
		return nil
	}

	batches := 0
	failures := 0
	for start := 0; start < len(fresh); start += p.batchSize {
		end := start + p.batchSize
		if end > len(fresh) {
			end = len(fresh)
		}
		batch := fresh[start:end]

		if batches > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("ping cancelled: %w", ctx.Err())
			case <-time.After(p.batchDelay):
			}
		}
		batches++

		if err := p.sendBatch(ctx, batch, kind); err != nil {
			p.logger.Warn("ping batch failed", "kind", kind, "urls", len(batch), "error", err)
			failures++
			continue
		}

		now := time.Now()
		for _, u := range batch {
			if err := p.log.MarkPinged(ctx, u, kind, now); err != nil {
				p.logger.Warn("recording ping failed", "url", u, "error", err)
			}
		}
	}

	if failures == batches {
		return fmt.Errorf("all %d ping batches failed", failures)
	}
	p.logger.Info("ping complete", "kind", kind, "submitted", len(fresh), "batches", batches, "failed_batches", failures)
	return nil
}

// filterTracked drops URLs already notified inside the tracking window.
// A ping-log read error keeps the URL in: re-notifying is harmless, missing
// a transition is not.
func (p *HTTPPinger) filterTracked(ctx context.Context, urls []string, kind model.PingKind) []string {
	fresh := make([]string, 0, len(urls))
	for _, u := range urls {
		pinged, err := p.log.RecentlyPinged(ctx, u, kind, p.trackingWindow)
		if err != nil {
			p.logger.Warn("ping log read failed", "url", u, "error", err)
			pinged = false
		}
		if !pinged {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

func (p *HTTPPinger) sendBatch(ctx context.Context, urls []string, kind model.PingKind) error {
	body, err := json.Marshal(pingPayload{Key: p.key, Type: string(kind), URLs: urls})
	if err != nil {
		return fmt.Errorf("marshal ping payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post ping batch: %w", err)
	}
	defer resp.Body.Close()

	// Endpoints answer 200 or 202 on accept. Anything else is a failure,
	// including 429; the next run will pick the URLs up again.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("ping endpoint returned %d", resp.StatusCode)
	}
	return nil
}
