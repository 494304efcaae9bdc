package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nursewire/nursewire/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS employers (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	slug            TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	career_page_url TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	source_url              TEXT NOT NULL UNIQUE,
	slug                    TEXT NOT NULL UNIQUE,
	title                   TEXT NOT NULL,
	description             TEXT NOT NULL,
	employer_id             INTEGER NOT NULL REFERENCES employers(id),
	city                    TEXT NOT NULL DEFAULT '',
	state                   TEXT NOT NULL DEFAULT '',
	zip_code                TEXT NOT NULL DEFAULT '',
	is_remote               INTEGER NOT NULL DEFAULT 0,
	job_type                TEXT NOT NULL DEFAULT '',
	specialty               TEXT NOT NULL DEFAULT '',
	experience_level        TEXT NOT NULL DEFAULT '',
	shift_type              TEXT NOT NULL DEFAULT '',
	salary_min              REAL,
	salary_max              REAL,
	salary_type             TEXT NOT NULL DEFAULT '',
	salary_min_hourly       REAL,
	salary_max_hourly       REAL,
	salary_min_annual       REAL,
	salary_max_annual       REAL,
	is_active               INTEGER NOT NULL DEFAULT 1,
	expires_date            DATETIME,
	calculated_expires_date DATETIME,
	scraped_at              DATETIME NOT NULL,
	classified_at           DATETIME,
	meta_description        TEXT NOT NULL DEFAULT '',
	keywords                TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_postings_employer_active
	ON postings (employer_id, is_active);

CREATE TABLE IF NOT EXISTS ping_log (
	url       TEXT NOT NULL,
	kind      TEXT NOT NULL,
	pinged_at DATETIME NOT NULL,
	PRIMARY KEY (url, kind)
);
`

// SQLiteStore persists employers, postings, and the notification ping log.
// It implements model.Store and model.PingLog.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertEmployer creates the employer or refreshes its name and career page
// URL, returning the stored row. Employers are never deleted.
func (s *SQLiteStore) UpsertEmployer(ctx context.Context, slug, name, careerPageURL string) (model.Employer, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employers (slug, name, career_page_url) VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET name = excluded.name, career_page_url = excluded.career_page_url`,
		slug, name, careerPageURL)
	if err != nil {
		return model.Employer{}, fmt.Errorf("upserting employer %s: %w", slug, err)
	}
	return s.EmployerBySlug(ctx, slug)
}

// EmployerBySlug fetches an employer. Returns sql.ErrNoRows wrapped when
// absent.
func (s *SQLiteStore) EmployerBySlug(ctx context.Context, slug string) (model.Employer, error) {
	var e model.Employer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, career_page_url FROM employers WHERE slug = ?`, slug).
		Scan(&e.ID, &e.Slug, &e.Name, &e.CareerPageURL)
	if err != nil {
		return model.Employer{}, fmt.Errorf("loading employer %s: %w", slug, err)
	}
	return e, nil
}

const postingColumns = `id, source_url, slug, title, description, employer_id,
	city, state, zip_code, is_remote,
	job_type, specialty, experience_level, shift_type,
	salary_min, salary_max, salary_type,
	salary_min_hourly, salary_max_hourly, salary_min_annual, salary_max_annual,
	is_active, expires_date, calculated_expires_date,
	scraped_at, classified_at, meta_description, keywords`

// PostingBySourceURL returns the posting for sourceURL, or (nil, nil) when
// none exists.
func (s *SQLiteStore) PostingBySourceURL(ctx context.Context, sourceURL string) (*model.Posting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE source_url = ?`, sourceURL)
	p, err := scanPosting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading posting %s: %w", sourceURL, err)
	}
	return p, nil
}

// CreatePosting inserts a new posting and sets p.ID.
func (s *SQLiteStore) CreatePosting(ctx context.Context, p *model.Posting) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO postings (source_url, slug, title, description, employer_id,
			city, state, zip_code, is_remote,
			job_type, specialty, experience_level, shift_type,
			salary_min, salary_max, salary_type,
			salary_min_hourly, salary_max_hourly, salary_min_annual, salary_max_annual,
			is_active, expires_date, calculated_expires_date,
			scraped_at, classified_at, meta_description, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SourceURL, p.Slug, p.Title, p.Description, p.EmployerID,
		p.City, p.State, p.ZipCode, p.IsRemote,
		p.JobType, p.Specialty, p.ExperienceLevel, p.ShiftType,
		nullFloat(p.SalaryMin), nullFloat(p.SalaryMax), p.SalaryType,
		nullFloat(p.SalaryMinHourly), nullFloat(p.SalaryMaxHourly),
		nullFloat(p.SalaryMinAnnual), nullFloat(p.SalaryMaxAnnual),
		p.IsActive, nullTime(p.ExpiresDate), nullTime(p.CalculatedExpiresDate),
		p.ScrapedAt.UTC(), nullTime(p.ClassifiedAt), p.MetaDescription,
		strings.Join(p.Keywords, ","))
	if err != nil {
		return fmt.Errorf("creating posting %s: %w", p.SourceURL, err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("creating posting %s: %w", p.SourceURL, err)
	}
	return nil
}

// UpdatePosting rewrites all mutable fields of the posting identified by
// source_url.
func (s *SQLiteStore) UpdatePosting(ctx context.Context, p *model.Posting) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE postings SET
			slug = ?, title = ?, description = ?,
			city = ?, state = ?, zip_code = ?, is_remote = ?,
			job_type = ?, specialty = ?, experience_level = ?, shift_type = ?,
			salary_min = ?, salary_max = ?, salary_type = ?,
			salary_min_hourly = ?, salary_max_hourly = ?,
			salary_min_annual = ?, salary_max_annual = ?,
			is_active = ?, expires_date = ?, calculated_expires_date = ?,
			scraped_at = ?, classified_at = ?, meta_description = ?, keywords = ?
		WHERE source_url = ?`,
		p.Slug, p.Title, p.Description,
		p.City, p.State, p.ZipCode, p.IsRemote,
		p.JobType, p.Specialty, p.ExperienceLevel, p.ShiftType,
		nullFloat(p.SalaryMin), nullFloat(p.SalaryMax), p.SalaryType,
		nullFloat(p.SalaryMinHourly), nullFloat(p.SalaryMaxHourly),
		nullFloat(p.SalaryMinAnnual), nullFloat(p.SalaryMaxAnnual),
		p.IsActive, nullTime(p.ExpiresDate), nullTime(p.CalculatedExpiresDate),
		p.ScrapedAt.UTC(), nullTime(p.ClassifiedAt), p.MetaDescription,
		strings.Join(p.Keywords, ","), p.SourceURL)
	if err != nil {
		return fmt.Errorf("updating posting %s: %w", p.SourceURL, err)
	}
	return nil
}

// ActiveSourceURLs lists the source URLs of all active postings owned by
// the employer. The reconciler diffs this against the current run.
func (s *SQLiteStore) ActiveSourceURLs(ctx context.Context, employerID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url FROM postings WHERE employer_id = ? AND is_active = 1`, employerID)
	if err != nil {
		return nil, fmt.Errorf("listing active postings for employer %d: %w", employerID, err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("listing active postings for employer %d: %w", employerID, err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// DeactivateBySourceURLs marks the given postings of one employer inactive.
// Postings of other employers are never touched.
func (s *SQLiteStore) DeactivateBySourceURLs(ctx context.Context, employerID int64, sourceURLs []string) error {
	if len(sourceURLs) == 0 {
		return nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(sourceURLs)), ",")
	args := make([]any, 0, len(sourceURLs)+1)
	args = append(args, employerID)
	for _, u := range sourceURLs {
		args = append(args, u)
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE postings SET is_active = 0 WHERE employer_id = ? AND source_url IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("deactivating %d postings for employer %d: %w", len(sourceURLs), employerID, err)
	}
	return nil
}

// DeactivateExpired marks every active posting whose governing expiry
// (explicit expires_date, else calculated_expires_date) has passed as
// inactive, and returns their source URLs. Idempotent: a second run with
// the same clock returns nothing.
func (s *SQLiteStore) DeactivateExpired(ctx context.Context, asOf time.Time) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("expiry sweep: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT source_url FROM postings
		WHERE is_active = 1 AND COALESCE(expires_date, calculated_expires_date) < ?`,
		asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("expiry sweep: %w", err)
	}
	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, fmt.Errorf("expiry sweep: %w", err)
		}
		urls = append(urls, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expiry sweep: %w", err)
	}

	if len(urls) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE postings SET is_active = 0
			WHERE is_active = 1 AND COALESCE(expires_date, calculated_expires_date) < ?`,
			asOf.UTC())
		if err != nil {
			return nil, fmt.Errorf("expiry sweep: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("expiry sweep: %w", err)
	}
	return urls, nil
}

// ListPostings returns an employer's postings, newest first. Pass an empty
// employerSlug for all employers and nil for both lifecycle states.
func (s *SQLiteStore) ListPostings(ctx context.Context, employerSlug string, active *bool) ([]model.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings`
	var conds []string
	var args []any
	if employerSlug != "" {
		conds = append(conds, `employer_id = (SELECT id FROM employers WHERE slug = ?)`)
		args = append(args, employerSlug)
	}
	if active != nil {
		conds = append(conds, `is_active = ?`)
		args = append(args, *active)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY scraped_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("listing postings: %w", err)
		}
		postings = append(postings, *p)
	}
	return postings, rows.Err()
}

// RecentlyPinged reports whether url was already submitted with this kind
// inside the tracking window.
func (s *SQLiteStore) RecentlyPinged(ctx context.Context, url string, kind model.PingKind, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window).UTC()
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM ping_log WHERE url = ? AND kind = ? AND pinged_at >= ?`,
		url, string(kind), cutoff).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking ping log for %s: %w", url, err)
	}
	return true, nil
}

// MarkPinged records a successful submission, replacing any older entry.
func (s *SQLiteStore) MarkPinged(ctx context.Context, url string, kind model.PingKind, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ping_log (url, kind, pinged_at) VALUES (?, ?, ?)
		 ON CONFLICT(url, kind) DO UPDATE SET pinged_at = excluded.pinged_at`,
		url, string(kind), at.UTC())
	if err != nil {
		return fmt.Errorf("recording ping for %s: %w", url, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (*model.Posting, error) {
	var p model.Posting
	var salaryMin, salaryMax, minHourly, maxHourly, minAnnual, maxAnnual sql.NullFloat64
	var expires, calcExpires, classifiedAt sql.NullTime
	var keywords string

	err := row.Scan(&p.ID, &p.SourceURL, &p.Slug, &p.Title, &p.Description, &p.EmployerID,
		&p.City, &p.State, &p.ZipCode, &p.IsRemote,
		&p.JobType, &p.Specialty, &p.ExperienceLevel, &p.ShiftType,
		&salaryMin, &salaryMax, &p.SalaryType,
		&minHourly, &maxHourly, &minAnnual, &maxAnnual,
		&p.IsActive, &expires, &calcExpires,
		&p.ScrapedAt, &classifiedAt, &p.MetaDescription, &keywords)
	if err != nil {
		return nil, err
	}

	p.SalaryMin = floatPtr(salaryMin)
	p.SalaryMax = floatPtr(salaryMax)
	p.SalaryMinHourly = floatPtr(minHourly)
	p.SalaryMaxHourly = floatPtr(maxHourly)
	p.SalaryMinAnnual = floatPtr(minAnnual)
	p.SalaryMaxAnnual = floatPtr(maxAnnual)
	p.ExpiresDate = timePtr(expires)
	p.CalculatedExpiresDate = timePtr(calcExpires)
	p.ClassifiedAt = timePtr(classifiedAt)
	if keywords != "" {
		p.Keywords = strings.Split(keywords, ",")
	}
	return &p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
