package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// maxBodyBytes caps how much of a career page we read. Listing and detail
// pages are small; anything past this is not a job posting.
const maxBodyBytes = 4 << 20

// Session fetches raw career-site pages over a shared HTTP client. One
// session is owned exclusively by one employer run for its duration.
type Session struct {
	client    *http.Client
	userAgent string
}

// NewSession returns a page session with the given per-request timeout.
func NewSession(timeout time.Duration) *Session {
	return &Session{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// NewSessionWithClient is used by tests to inject an httptest client.
func NewSessionWithClient(client *http.Client) *Session {
	return &Session{client: client, userAgent: defaultUserAgent}
}

// FetchPage retrieves url and returns the response body as a string.
// Non-200 responses become a model.HTTPError so the retry layer can decide
// whether the failure is transient.
func (s *Session) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("fetching %s", url),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// parseRetryAfter parses a Retry-After header in seconds format.
// Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
