// Package runner owns the full pipeline for a single employer run:
// paginate → classify → normalize → reconcile → ping.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nursewire/nursewire/internal/classify"
	"github.com/nursewire/nursewire/internal/config"
	"github.com/nursewire/nursewire/internal/model"
	"github.com/nursewire/nursewire/internal/normalize"
	"github.com/nursewire/nursewire/internal/paginate"
	"github.com/nursewire/nursewire/internal/reconcile"
)

// Summary reports what one employer run did, for the structured run log
// and the CLI exit path.
type Summary struct {
	Employer      string
	Fetched       int
	FetchSkipped  int
	Accepted      int
	Rejected      map[classify.Stage]int
	Result        reconcile.Result
	Aborted       bool // pagination did not complete; no deactivation sweep ran
}

// Runner executes employer pipelines. One Runner is shared by the CLI and
// the daemon scheduler; the in-process guard refuses overlapping runs for
// the same employer, since the deactivation sweep assumes a single
// consistent current-run snapshot. (The guard does not span processes —
// don't run two daemons against one database.)
type Runner struct {
	store      model.Store
	fetcher    model.PageFetcher
	classifier *classify.Classifier
	reconciler *reconcile.Reconciler
	pinger     model.Pinger
	maxPages   int
	emptyLimit int
	logger     *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// New creates a runner wired with all its dependencies.
func New(
	store model.Store,
	fetcher model.PageFetcher,
	classifier *classify.Classifier,
	reconciler *reconcile.Reconciler,
	pinger model.Pinger,
	maxPages, emptyPageLimit int,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		store:      store,
		fetcher:    fetcher,
		classifier: classifier,
		reconciler: reconciler,
		pinger:     pinger,
		maxPages:   maxPages,
		emptyLimit: emptyPageLimit,
		logger:     logger,
		running:    make(map[string]bool),
	}
}

// Run executes one full pipeline for the employer. maxPagesOverride caps
// pagination when positive. Partial failures (single pages, single records)
// are logged inside the summary; the returned error means the run as a
// whole could not produce a usable snapshot.
func (r *Runner) Run(ctx context.Context, emp config.EmployerConfig, maxPagesOverride int) (Summary, error) {
	summary := Summary{Employer: emp.Slug, Rejected: make(map[classify.Stage]int)}

	if !r.acquire(emp.Slug) {
		return summary, fmt.Errorf("run already in progress for employer %s", emp.Slug)
	}
	defer r.release(emp.Slug)

	employer, err := r.store.UpsertEmployer(ctx, emp.Slug, emp.Name, emp.CareerPageURL)
	if err != nil {
		return summary, fmt.Errorf("run for %s: %w", emp.Slug, err)
	}

	maxPages := r.maxPages
	if maxPagesOverride > 0 {
		maxPages = maxPagesOverride
	}

	logger := r.logger.With("employer", emp.Slug)
	paginator := paginate.New(r.fetcher, maxPages, r.emptyLimit, logger)

	jobs, fetchSkipped, pageErr := paginator.Run(ctx, emp.CareerPageURL)
	summary.Fetched = len(jobs)
	summary.FetchSkipped = fetchSkipped

	if pageErr != nil && len(jobs) == 0 {
		// Nothing came back at all: the site is unreachable or the run was
		// cancelled before the first detail. Unrecoverable for this run.
		return summary, fmt.Errorf("run for %s: %w", emp.Slug, pageErr)
	}
	summary.Aborted = pageErr != nil

	var records []model.NormalizedPosting
	for _, job := range jobs {
		decision := r.classifier.Classify(job)
		if !decision.Accept {
			summary.Rejected[decision.Stage]++
			logger.Debug("rejected listing",
				"title", job.Title,
				"stage", decision.Stage,
				"reason", decision.Reason,
			)
			continue
		}
		records = append(records, normalize.Normalize(job, employer))
	}
	summary.Accepted = len(records)

	runTime := time.Now().UTC()
	if summary.Aborted {
		// Keep what we observed, but never sweep on a partial snapshot:
		// postings simply not reached this session are not gone. The abort
		// may have come from ctx itself, so persistence runs on its own
		// short-lived context or every upsert would fail too.
		logger.Warn("pagination incomplete, upserting partial batch without sweep", "error", pageErr)
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		summary.Result = r.reconciler.UpsertBatch(persistCtx, employer, records, runTime)
	} else {
		summary.Result, err = r.reconciler.Reconcile(ctx, employer, records, runTime)
		if err != nil {
			return summary, fmt.Errorf("run for %s: %w", emp.Slug, err)
		}
	}

	r.ping(ctx, summary.Result)

	logger.Info("run complete",
		"fetched", summary.Fetched,
		"fetch_skipped", summary.FetchSkipped,
		"accepted", summary.Accepted,
		"rejected", summary.Fetched-summary.Accepted,
		"created", summary.Result.Created,
		"updated", summary.Result.Updated,
		"reactivated", summary.Result.Reactivated,
		"deactivated", summary.Result.Deactivated,
		"record_skipped", len(summary.Result.Skipped),
		"aborted", summary.Aborted,
	)
	return summary, nil
}

// ping hands lifecycle transitions to the side channel. Failures are logged
// and swallowed: this is an SEO channel, never a correctness dependency.
func (r *Runner) ping(ctx context.Context, result reconcile.Result) {
	if len(result.ActivatedURLs) > 0 {
		if err := r.pinger.Ping(ctx, result.ActivatedURLs, model.PingUpdate); err != nil {
			r.logger.Warn("update ping failed", "error", err)
		}
	}
	if len(result.DeactivatedURLs) > 0 {
		if err := r.pinger.Ping(ctx, result.DeactivatedURLs, model.PingDelete); err != nil {
			r.logger.Warn("delete ping failed", "error", err)
		}
	}
}

// Sweep runs the time-based expiry sweep and pings deletions.
func (r *Runner) Sweep(ctx context.Context, asOf time.Time) (int, error) {
	urls, err := r.reconciler.ExpireOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if len(urls) > 0 {
		if err := r.pinger.Ping(ctx, urls, model.PingDelete); err != nil {
			r.logger.Warn("delete ping failed", "error", err)
		}
	}
	return len(urls), nil
}

func (r *Runner) acquire(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[slug] {
		return false
	}
	r.running[slug] = true
	return true
}

func (r *Runner) release(slug string) {
	r.mu.Lock()
	delete(r.running, slug)
	r.mu.Unlock()
}
