// Package reconcile owns the posting lifecycle state machine: new → active
// ⇄ inactive, never deleted. It upserts normalized records against the
// store, keeps expiry honest, and deactivates postings that vanished from
// the source.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

// DefaultExpiryWindow is how long a posting without an explicit source
// expiry stays fresh after its last observation. Re-observation restarts
// the window, so a still-posted job never goes stale.
const DefaultExpiryWindow = 60 * 24 * time.Hour

// SkippedRecord reports a single record the reconciler could not persist.
// Skips are results, not errors: one bad record never aborts a run, but
// the skip rate must stay observable.
type SkippedRecord struct {
	SourceURL string
	Reason    string
}

// Result summarizes one reconciliation batch. ActivatedURLs holds postings
// that transitioned to active (created or reactivated) and DeactivatedURLs
// those swept inactive; both feed the notification side channel.
type Result struct {
	Created     int
	Updated     int
	Reactivated int
	Deactivated int

	ActivatedURLs   []string
	DeactivatedURLs []string
	Skipped         []SkippedRecord
}

// Reconciler applies normalized records to the store. The store handle is
// passed in explicitly; the reconciler holds no process-wide state and is
// safe as long as at most one writer runs per employer.
type Reconciler struct {
	store  model.Store
	window time.Duration
	logger *slog.Logger
}

// New creates a reconciler. window falls back to DefaultExpiryWindow when
// non-positive.
func New(store model.Store, window time.Duration, logger *slog.Logger) *Reconciler {
	if window <= 0 {
		window = DefaultExpiryWindow
	}
	return &Reconciler{store: store, window: window, logger: logger}
}

// Reconcile runs a complete employer batch: upsert every record, then
// deactivate the employer's active postings that were not observed. Use it
// only for runs that finished pagination; for aborted runs call
// UpsertBatch alone, since sweeping a partial snapshot would wrongly
// deactivate postings the run simply never reached.
func (r *Reconciler) Reconcile(ctx context.Context, emp model.Employer, records []model.NormalizedPosting, runTime time.Time) (Result, error) {
	result, observed := r.upsertBatch(ctx, emp, records, runTime)

	if err := r.sweepMissing(ctx, emp, observed, &result); err != nil {
		return result, err
	}
	return result, nil
}

// UpsertBatch applies the records without the deactivation sweep.
func (r *Reconciler) UpsertBatch(ctx context.Context, emp model.Employer, records []model.NormalizedPosting, runTime time.Time) Result {
	result, _ := r.upsertBatch(ctx, emp, records, runTime)
	return result
}

func (r *Reconciler) upsertBatch(ctx context.Context, emp model.Employer, records []model.NormalizedPosting, runTime time.Time) (Result, map[string]bool) {
	var result Result
	observed := make(map[string]bool, len(records))

	for _, rec := range records {
		if rec.SourceURL == "" {
			result.Skipped = append(result.Skipped, SkippedRecord{Reason: "record has no source URL"})
			continue
		}
		if observed[rec.SourceURL] {
			// Listings occasionally repeat a job inside one run; the first
			// occurrence already won.
			continue
		}
		// Observation is a fact about the run, not about persistence: a
		// record that fails to upsert was still present on the source, and
		// the sweep must not deactivate it.
		observed[rec.SourceURL] = true

		outcome, err := r.upsertOne(ctx, emp, rec, runTime)
		if err != nil {
			r.logger.Warn("skipping record",
				"source_url", rec.SourceURL,
				"error", err,
			)
			result.Skipped = append(result.Skipped, SkippedRecord{
				SourceURL: rec.SourceURL,
				Reason:    err.Error(),
			})
			continue
		}

		switch outcome {
		case outcomeCreated:
			result.Created++
			result.ActivatedURLs = append(result.ActivatedURLs, rec.SourceURL)
		case outcomeUpdated:
			result.Updated++
		case outcomeReactivated:
			result.Reactivated++
			result.ActivatedURLs = append(result.ActivatedURLs, rec.SourceURL)
		}
	}

	return result, observed
}

type upsertOutcome int

const (
	outcomeCreated upsertOutcome = iota
	outcomeUpdated
	outcomeReactivated
)

// upsertOne creates or refreshes the posting for one record. A create that
// loses a race on the source_url unique constraint falls through to the
// update path instead of erroring.
func (r *Reconciler) upsertOne(ctx context.Context, emp model.Employer, rec model.NormalizedPosting, runTime time.Time) (upsertOutcome, error) {
	existing, err := r.store.PostingBySourceURL(ctx, rec.SourceURL)
	if err != nil {
		return 0, err
	}

	if existing == nil {
		p := buildPosting(emp, rec, runTime, r.window)
		if err := r.store.CreatePosting(ctx, p); err != nil {
			// Unique-constraint conflict: someone inserted this source_url
			// between lookup and insert. Re-read and update instead.
			winner, lookupErr := r.store.PostingBySourceURL(ctx, rec.SourceURL)
			if lookupErr != nil || winner == nil {
				return 0, err
			}
			return r.refresh(ctx, winner, rec, runTime)
		}
		return outcomeCreated, nil
	}

	return r.refresh(ctx, existing, rec, runTime)
}

// refresh applies the record onto an existing posting: all normalized
// fields are overwritten, scrapedAt advances, the posting turns (or stays)
// active, and the expiry extends.
func (r *Reconciler) refresh(ctx context.Context, existing *model.Posting, rec model.NormalizedPosting, runTime time.Time) (upsertOutcome, error) {
	wasActive := existing.IsActive

	applyRecord(existing, rec)
	existing.ScrapedAt = runTime
	existing.ClassifiedAt = &runTime
	existing.IsActive = true

	// Explicit expiry governs verbatim; otherwise re-observation extends
	// the calculated window from the current scrape time.
	existing.ExpiresDate = rec.ExpiresDate
	if existing.ExpiresDate == nil {
		calc := runTime.Add(r.window)
		existing.CalculatedExpiresDate = &calc
	}

	if err := r.store.UpdatePosting(ctx, existing); err != nil {
		return 0, err
	}
	if wasActive {
		return outcomeUpdated, nil
	}
	return outcomeReactivated, nil
}

// sweepMissing deactivates every active posting of the employer whose
// source URL was not observed this run.
func (r *Reconciler) sweepMissing(ctx context.Context, emp model.Employer, observed map[string]bool, result *Result) error {
	active, err := r.store.ActiveSourceURLs(ctx, emp.ID)
	if err != nil {
		return fmt.Errorf("deactivation sweep for %s: %w", emp.Slug, err)
	}

	var missing []string
	for _, u := range active {
		if !observed[u] {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := r.store.DeactivateBySourceURLs(ctx, emp.ID, missing); err != nil {
		return fmt.Errorf("deactivation sweep for %s: %w", emp.Slug, err)
	}

	result.Deactivated = len(missing)
	result.DeactivatedURLs = missing
	r.logger.Info("deactivation sweep complete",
		"employer", emp.Slug,
		"deactivated", len(missing),
	)
	return nil
}

// ExpireOverdue is the independent time-based sweep: any active posting
// whose governing expiry has passed goes inactive, regardless of whether a
// scrape ever attributed the removal. Safe to re-run.
func (r *Reconciler) ExpireOverdue(ctx context.Context, asOf time.Time) ([]string, error) {
	urls, err := r.store.DeactivateExpired(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("expiry sweep: %w", err)
	}
	if len(urls) > 0 {
		r.logger.Info("expiry sweep deactivated postings", "count", len(urls))
	}
	return urls, nil
}

// buildPosting constructs a brand-new active posting from a record.
func buildPosting(emp model.Employer, rec model.NormalizedPosting, runTime time.Time, window time.Duration) *model.Posting {
	p := &model.Posting{
		SourceURL:  rec.SourceURL,
		EmployerID: emp.ID,
		IsActive:   true,
		ScrapedAt:  runTime,
	}
	classified := runTime
	p.ClassifiedAt = &classified

	applyRecord(p, rec)

	p.ExpiresDate = rec.ExpiresDate
	if p.ExpiresDate == nil {
		calc := runTime.Add(window)
		p.CalculatedExpiresDate = &calc
	}
	return p
}

// applyRecord copies all normalized fields onto the posting.
func applyRecord(p *model.Posting, rec model.NormalizedPosting) {
	p.Slug = rec.Slug
	p.Title = rec.Title
	p.Description = rec.Description
	p.City = rec.City
	p.State = rec.State
	p.ZipCode = rec.ZipCode
	p.IsRemote = rec.IsRemote
	p.JobType = rec.JobType
	p.Specialty = rec.Specialty
	p.ExperienceLevel = rec.ExperienceLevel
	p.ShiftType = rec.ShiftType
	p.SalaryMin = rec.SalaryMin
	p.SalaryMax = rec.SalaryMax
	p.SalaryType = rec.SalaryType
	p.SalaryMinHourly = rec.SalaryMinHourly
	p.SalaryMaxHourly = rec.SalaryMaxHourly
	p.SalaryMinAnnual = rec.SalaryMinAnnual
	p.SalaryMaxAnnual = rec.SalaryMaxAnnual
	p.MetaDescription = rec.MetaDescription
	p.Keywords = rec.Keywords
}
