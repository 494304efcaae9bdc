package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPosting(employerID int64, sourceURL, slug string) *model.Posting {
	now := time.Now().UTC().Truncate(time.Second)
	calc := now.Add(60 * 24 * time.Hour)
	return &model.Posting{
		SourceURL:             sourceURL,
		Slug:                  slug,
		Title:                 "ICU Registered Nurse",
		Description:           "Active RN license required.",
		EmployerID:            employerID,
		City:                  "Austin",
		State:                 "TX",
		JobType:               "Full-Time",
		Specialty:             "ICU",
		IsActive:              true,
		CalculatedExpiresDate: &calc,
		ScrapedAt:             now,
		Keywords:              []string{"registered nurse", "icu rn"},
	}
}

func TestUpsertEmployer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")
	if err != nil {
		t.Fatalf("UpsertEmployer() error = %v", err)
	}
	if first.ID == 0 {
		t.Error("expected a non-zero employer ID")
	}

	second, err := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health System", "https://jobs.mercy.example.com")
	if err != nil {
		t.Fatalf("UpsertEmployer() second call error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert changed employer ID: %d -> %d", first.ID, second.ID)
	}
	if second.Name != "Mercy Health System" {
		t.Errorf("upsert did not refresh name, got %q", second.Name)
	}
}

func TestEmployerBySlug_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.EmployerBySlug(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing employer")
	}
}

func TestPostingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	emp, err := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")
	if err != nil {
		t.Fatalf("UpsertEmployer() error = %v", err)
	}

	got, err := s.PostingBySourceURL(ctx, "https://careers.mercy.example.com/jobs/1")
	if err != nil {
		t.Fatalf("PostingBySourceURL() error = %v", err)
	}
	if got != nil {
		t.Fatal("expected nil posting before insert")
	}

	p := testPosting(emp.ID, "https://careers.mercy.example.com/jobs/1", "icu-rn-austin-tx-1")
	min := 38.0
	p.SalaryMinHourly = &min
	if err := s.CreatePosting(ctx, p); err != nil {
		t.Fatalf("CreatePosting() error = %v", err)
	}
	if p.ID == 0 {
		t.Error("CreatePosting() did not set ID")
	}

	got, err = s.PostingBySourceURL(ctx, p.SourceURL)
	if err != nil {
		t.Fatalf("PostingBySourceURL() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected stored posting")
	}
	if got.Title != p.Title || got.City != "Austin" || got.State != "TX" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.SalaryMinHourly == nil || *got.SalaryMinHourly != 38.0 {
		t.Errorf("salary did not survive round trip: %v", got.SalaryMinHourly)
	}
	if got.ExpiresDate != nil {
		t.Error("expected nil explicit expiry")
	}
	if got.CalculatedExpiresDate == nil {
		t.Error("expected calculated expiry to be stored")
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "registered nurse" {
		t.Errorf("keywords mismatch: %v", got.Keywords)
	}
}

func TestCreatePosting_DuplicateSourceURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	emp, _ := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")
	p := testPosting(emp.ID, "https://careers.mercy.example.com/jobs/1", "slug-a")
	if err := s.CreatePosting(ctx, p); err != nil {
		t.Fatalf("CreatePosting() error = %v", err)
	}

	dup := testPosting(emp.ID, "https://careers.mercy.example.com/jobs/1", "slug-b")
	if err := s.CreatePosting(ctx, dup); err == nil {
		t.Error("expected unique constraint error for duplicate source_url")
	}
}

func TestUpdatePosting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	emp, _ := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")
	p := testPosting(emp.ID, "https://careers.mercy.example.com/jobs/1", "slug-a")
	if err := s.CreatePosting(ctx, p); err != nil {
		t.Fatalf("CreatePosting() error = %v", err)
	}

	p.Title = "ICU RN - Nights"
	p.IsActive = false
	if err := s.UpdatePosting(ctx, p); err != nil {
		t.Fatalf("UpdatePosting() error = %v", err)
	}

	got, err := s.PostingBySourceURL(ctx, p.SourceURL)
	if err != nil {
		t.Fatalf("PostingBySourceURL() error = %v", err)
	}
	if got.Title != "ICU RN - Nights" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if got.IsActive {
		t.Error("is_active not updated")
	}
	if got.ID != p.ID {
		t.Errorf("update changed row identity: %d -> %d", p.ID, got.ID)
	}
}

func TestActiveSourceURLs_DeactivateBySourceURLs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mercy, _ := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")
	stlukes, _ := s.UpsertEmployer(ctx, "st-lukes", "St. Luke's", "https://jobs.stlukes.example.com")

	for i, url := range []string{"https://m.example.com/jobs/1", "https://m.example.com/jobs/2"} {
		p := testPosting(mercy.ID, url, "mercy-"+string(rune('a'+i)))
		if err := s.CreatePosting(ctx, p); err != nil {
			t.Fatalf("CreatePosting() error = %v", err)
		}
	}
	// Same URL path shape under the other employer must stay untouched.
	other := testPosting(stlukes.ID, "https://s.example.com/jobs/1", "stlukes-a")
	if err := s.CreatePosting(ctx, other); err != nil {
		t.Fatalf("CreatePosting() error = %v", err)
	}

	urls, err := s.ActiveSourceURLs(ctx, mercy.ID)
	if err != nil {
		t.Fatalf("ActiveSourceURLs() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 active mercy postings, got %d", len(urls))
	}

	if err := s.DeactivateBySourceURLs(ctx, mercy.ID, []string{"https://m.example.com/jobs/2"}); err != nil {
		t.Fatalf("DeactivateBySourceURLs() error = %v", err)
	}

	urls, err = s.ActiveSourceURLs(ctx, mercy.ID)
	if err != nil {
		t.Fatalf("ActiveSourceURLs() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://m.example.com/jobs/1" {
		t.Errorf("unexpected active set after deactivation: %v", urls)
	}

	otherURLs, err := s.ActiveSourceURLs(ctx, stlukes.ID)
	if err != nil {
		t.Fatalf("ActiveSourceURLs() error = %v", err)
	}
	if len(otherURLs) != 1 {
		t.Errorf("other employer's postings were touched: %v", otherURLs)
	}
}

func TestDeactivateBySourceURLs_Empty(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeactivateBySourceURLs(context.Background(), 1, nil); err != nil {
		t.Errorf("empty deactivation should be a no-op, got %v", err)
	}
}

func TestDeactivateExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	emp, _ := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	// Calculated expiry in the past: should expire.
	expired := testPosting(emp.ID, "https://m.example.com/jobs/expired", "exp-a")
	expired.CalculatedExpiresDate = &past

	// Explicit expiry in the future overrides a stale calculated one.
	governed := testPosting(emp.ID, "https://m.example.com/jobs/governed", "exp-b")
	governed.ExpiresDate = &future
	governed.CalculatedExpiresDate = &past

	// Explicit expiry in the past expires even with a fresh calculated date.
	explicit := testPosting(emp.ID, "https://m.example.com/jobs/explicit", "exp-c")
	explicit.ExpiresDate = &past
	explicit.CalculatedExpiresDate = &future

	for _, p := range []*model.Posting{expired, governed, explicit} {
		if err := s.CreatePosting(ctx, p); err != nil {
			t.Fatalf("CreatePosting() error = %v", err)
		}
	}

	urls, err := s.DeactivateExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeactivateExpired() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 expired postings, got %v", urls)
	}
	want := map[string]bool{
		"https://m.example.com/jobs/expired":  true,
		"https://m.example.com/jobs/explicit": true,
	}
	for _, u := range urls {
		if !want[u] {
			t.Errorf("unexpected expired url %s", u)
		}
	}

	// Second sweep with the same clock finds nothing.
	urls, err = s.DeactivateExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeactivateExpired() second run error = %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("sweep is not idempotent, got %v", urls)
	}

	got, _ := s.PostingBySourceURL(ctx, governed.SourceURL)
	if !got.IsActive {
		t.Error("posting with future explicit expiry was deactivated")
	}
}

func TestListPostings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mercy, _ := s.UpsertEmployer(ctx, "mercy-health", "Mercy Health", "https://careers.mercy.example.com")
	stlukes, _ := s.UpsertEmployer(ctx, "st-lukes", "St. Luke's", "https://jobs.stlukes.example.com")

	active := testPosting(mercy.ID, "https://m.example.com/jobs/1", "list-a")
	inactive := testPosting(mercy.ID, "https://m.example.com/jobs/2", "list-b")
	inactive.IsActive = false
	other := testPosting(stlukes.ID, "https://s.example.com/jobs/1", "list-c")

	for _, p := range []*model.Posting{active, inactive, other} {
		if err := s.CreatePosting(ctx, p); err != nil {
			t.Fatalf("CreatePosting() error = %v", err)
		}
	}

	all, err := s.ListPostings(ctx, "", nil)
	if err != nil {
		t.Fatalf("ListPostings() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 postings, got %d", len(all))
	}

	mercyOnly, err := s.ListPostings(ctx, "mercy-health", nil)
	if err != nil {
		t.Fatalf("ListPostings() error = %v", err)
	}
	if len(mercyOnly) != 2 {
		t.Errorf("expected 2 mercy postings, got %d", len(mercyOnly))
	}

	activeOnly := true
	mercyActive, err := s.ListPostings(ctx, "mercy-health", &activeOnly)
	if err != nil {
		t.Fatalf("ListPostings() error = %v", err)
	}
	if len(mercyActive) != 1 || mercyActive[0].SourceURL != active.SourceURL {
		t.Errorf("active filter mismatch: %+v", mercyActive)
	}
}

func TestPingLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	url := "https://board.example.com/jobs/icu-rn"

	seen, err := s.RecentlyPinged(ctx, url, model.PingUpdate, time.Hour)
	if err != nil {
		t.Fatalf("RecentlyPinged() error = %v", err)
	}
	if seen {
		t.Error("expected no ping record initially")
	}

	if err := s.MarkPinged(ctx, url, model.PingUpdate, time.Now()); err != nil {
		t.Fatalf("MarkPinged() error = %v", err)
	}

	seen, err = s.RecentlyPinged(ctx, url, model.PingUpdate, time.Hour)
	if err != nil {
		t.Fatalf("RecentlyPinged() error = %v", err)
	}
	if !seen {
		t.Error("expected ping inside window to be reported")
	}

	// A different kind for the same URL is tracked separately.
	seen, err = s.RecentlyPinged(ctx, url, model.PingDelete, time.Hour)
	if err != nil {
		t.Fatalf("RecentlyPinged() error = %v", err)
	}
	if seen {
		t.Error("delete kind should not inherit the update record")
	}

	// An old record outside the window does not count.
	if err := s.MarkPinged(ctx, url, model.PingDelete, time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatalf("MarkPinged() error = %v", err)
	}
	seen, err = s.RecentlyPinged(ctx, url, model.PingDelete, time.Hour)
	if err != nil {
		t.Fatalf("RecentlyPinged() error = %v", err)
	}
	if seen {
		t.Error("stale ping record should be outside the tracking window")
	}
}
