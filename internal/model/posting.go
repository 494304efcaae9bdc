package model

import (
	"context"
	"time"
)

// Posting is a job listing in the canonical store. Postings are never
// hard-deleted: lifecycle is expressed through IsActive plus the expiry
// fields, so inbound links keep resolving after a job disappears upstream.
type Posting struct {
	ID          int64
	SourceURL   string // external detail-page URL, the dedup key
	Slug        string // unique, URL-safe, derived from title+location+employer
	Title       string
	Description string
	EmployerID  int64

	City     string
	State    string // 2-letter code
	ZipCode  string
	IsRemote bool

	JobType         string
	Specialty       string
	ExperienceLevel string
	ShiftType       string

	SalaryMin  *float64
	SalaryMax  *float64
	SalaryType string // "hourly" or "annual", empty when no salary given
	// Both units are persisted so consumers never reconvert.
	SalaryMinHourly *float64
	SalaryMaxHourly *float64
	SalaryMinAnnual *float64
	SalaryMaxAnnual *float64

	IsActive bool
	// ExpiresDate is the source-provided expiry; when present it governs.
	// Otherwise CalculatedExpiresDate (scrapedAt + window) governs.
	ExpiresDate           *time.Time
	CalculatedExpiresDate *time.Time

	ScrapedAt    time.Time  // last time this posting was observed in any run
	ClassifiedAt *time.Time // last time classification/formatting was applied

	MetaDescription string
	Keywords        []string
}

// GoverningExpiry returns the expiry date that currently applies: the
// explicit source expiry when set, the calculated one otherwise. Nil means
// the posting never expires on its own.
func (p *Posting) GoverningExpiry() *time.Time {
	if p.ExpiresDate != nil {
		return p.ExpiresDate
	}
	return p.CalculatedExpiresDate
}

// Employer owns postings. Employers are never deleted.
type Employer struct {
	ID            int64
	Slug          string
	Name          string
	CareerPageURL string
}

// RawJob is what the paginator hands to classification: listing reference
// plus the raw detail-page extraction, before any normalization.
type RawJob struct {
	Title       string
	DetailURL   string
	Description string            // plain text, tags stripped
	Fields      map[string]string // labeled metadata fields as found on the page
}

// NormalizedPosting is the normalizer's output and the reconciler's input
// record contract. All enum fields are canonical.
type NormalizedPosting struct {
	Title         string
	Description   string
	SourceURL     string
	EmployerName  string
	EmployerSlug  string
	CareerPageURL string

	City     string
	State    string
	ZipCode  string
	IsRemote bool

	JobType         string
	ShiftType       string
	Specialty       string
	ExperienceLevel string

	SalaryMin       *float64
	SalaryMax       *float64
	SalaryType      string
	SalaryMinHourly *float64
	SalaryMaxHourly *float64
	SalaryMinAnnual *float64
	SalaryMaxAnnual *float64

	ExpiresDate *time.Time // explicit source expiry, rarely present

	Slug            string
	MetaDescription string
	Keywords        []string
}

// PageFetcher retrieves one page and returns its raw HTML.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// PingKind tags a notification batch for the search-engine side channel.
type PingKind string

const (
	PingUpdate PingKind = "update"
	PingDelete PingKind = "delete"
)

// Pinger is the outbound notification side channel. Implementations are
// best-effort: a Ping error never affects reconciliation correctness.
type Pinger interface {
	Ping(ctx context.Context, urls []string, kind PingKind) error
}

// Store is the persisted posting set the reconciler works against.
type Store interface {
	UpsertEmployer(ctx context.Context, slug, name, careerPageURL string) (Employer, error)
	EmployerBySlug(ctx context.Context, slug string) (Employer, error)
	PostingBySourceURL(ctx context.Context, sourceURL string) (*Posting, error)
	CreatePosting(ctx context.Context, p *Posting) error
	UpdatePosting(ctx context.Context, p *Posting) error
	ActiveSourceURLs(ctx context.Context, employerID int64) ([]string, error)
	DeactivateBySourceURLs(ctx context.Context, employerID int64, sourceURLs []string) error
	DeactivateExpired(ctx context.Context, asOf time.Time) ([]string, error)
}

// PingLog tracks recently notified URLs so duplicate submissions inside the
// tracking window can be reported as success without re-sending.
type PingLog interface {
	RecentlyPinged(ctx context.Context, url string, kind PingKind, window time.Duration) (bool, error)
	MarkPinged(ctx context.Context, url string, kind PingKind, at time.Time) error
}
