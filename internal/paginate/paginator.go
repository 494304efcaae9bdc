package paginate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/nursewire/nursewire/internal/model"
)

const (
	// DefaultMaxPages is a hard ceiling on listing pages per run. Employer
	// sites in scope rarely exceed a dozen pages; the ceiling exists so a
	// broken pager can never loop forever.
	DefaultMaxPages = 50

	// DefaultEmptyPageLimit stops the walk after this many consecutive
	// listing pages with zero job references.
	DefaultEmptyPageLimit = 2
)

// Paginator walks an employer's listing pages in two phases: first collect
// every job reference (cheap listing requests, fully bounded), then fetch
// each reference's detail page. A single failed detail fetch skips that job
// without aborting the walk. Request pacing comes from the fetcher's rate
// limiter, not from the paginator.
type Paginator struct {
	fetcher        model.PageFetcher
	maxPages       int
	emptyPageLimit int
	logger         *slog.Logger
}

// New creates a paginator. maxPages and emptyPageLimit fall back to the
// package defaults when non-positive.
func New(fetcher model.PageFetcher, maxPages, emptyPageLimit int, logger *slog.Logger) *Paginator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if emptyPageLimit <= 0 {
		emptyPageLimit = DefaultEmptyPageLimit
	}
	return &Paginator{
		fetcher:        fetcher,
		maxPages:       maxPages,
		emptyPageLimit: emptyPageLimit,
		logger:         logger,
	}
}

// Run enumerates all job references starting from entryURL, then fetches
// each detail page. It returns the raw jobs plus the number of detail
// fetches that were skipped after failing.
//
// Page 1 failing entirely is an error with no jobs: it usually means the
// site is unreachable. A later listing page failing returns the jobs
// gathered so far alongside a non-nil error — the snapshot is incomplete,
// and callers must not run membership sweeps against it.
func (p *Paginator) Run(ctx context.Context, entryURL string) ([]model.RawJob, int, error) {
	refs, listErr := p.collectRefs(ctx, entryURL)
	if listErr != nil && len(refs) == 0 {
		return nil, 0, listErr
	}

	p.logger.Info("listing phase complete", "refs", len(refs))

	var jobs []model.RawJob
	skipped := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			return jobs, skipped, fmt.Errorf("pagination aborted: %w", ctx.Err())
		}

		job, err := p.fetchDetail(ctx, ref)
		if err != nil {
			p.logger.Warn("detail fetch failed, skipping job",
				"url", ref.DetailURL,
				"title", ref.Title,
				"error", err,
			)
			skipped++
			continue
		}
		jobs = append(jobs, job)
	}

	if listErr != nil {
		return jobs, skipped, fmt.Errorf("listing enumeration incomplete: %w", listErr)
	}
	return jobs, skipped, nil
}

// collectRefs is phase 1: request page 1, 2, 3… via an explicit page query
// parameter (robust against "next"-button markup changes) until maxPages or
// emptyPageLimit consecutive empty pages. References are deduplicated by
// detail URL since listings repeat pinned jobs across pages.
func (p *Paginator) collectRefs(ctx context.Context, entryURL string) ([]JobRef, error) {
	seen := make(map[string]bool)
	var refs []JobRef
	emptyStreak := 0

	for page := 1; page <= p.maxPages; page++ {
		pageURL, err := withPageParam(entryURL, page)
		if err != nil {
			return nil, fmt.Errorf("building page URL: %w", err)
		}

		body, err := p.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetching first listing page: %w", err)
			}
			// A later page failing leaves the walk incomplete. Hand back
			// what we have together with the error: postings on the pages
			// we never reached are not gone, so the caller must treat this
			// as a partial snapshot.
			p.logger.Warn("listing page fetch failed, stopping enumeration",
				"page", page,
				"error", err,
			)
			return refs, fmt.Errorf("listing page %d: %w", page, err)
		}

		pageRefs := extractRefs(body, pageURL)
		p.logger.Debug("listing page scanned", "page", page, "refs", len(pageRefs))

		if len(pageRefs) == 0 {
			emptyStreak++
			if emptyStreak >= p.emptyPageLimit {
				break
			}
			continue
		}
		emptyStreak = 0

		for _, ref := range pageRefs {
			if seen[ref.DetailURL] {
				continue
			}
			seen[ref.DetailURL] = true
			refs = append(refs, ref)
		}
	}

	return refs, nil
}

// fetchDetail is phase 2 for a single reference.
func (p *Paginator) fetchDetail(ctx context.Context, ref JobRef) (model.RawJob, error) {
	body, err := p.fetcher.FetchPage(ctx, ref.DetailURL)
	if err != nil {
		return model.RawJob{}, err
	}

	return model.RawJob{
		Title:       ref.Title,
		DetailURL:   ref.DetailURL,
		Description: extractDescription(body),
		Fields:      extractFields(body),
	}, nil
}

// withPageParam sets the page query parameter on entryURL, replacing any
// existing value.
func withPageParam(entryURL string, page int) (string, error) {
	u, err := url.Parse(entryURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
