package store

import (
	"context"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

// NopStore is used in dry-run mode: every posting looks new, nothing is
// persisted, and sweeps find nothing to deactivate.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) UpsertEmployer(ctx context.Context, slug, name, careerPageURL string) (model.Employer, error) {
	return model.Employer{ID: 1, Slug: slug, Name: name, CareerPageURL: careerPageURL}, nil
}

func (s *NopStore) EmployerBySlug(ctx context.Context, slug string) (model.Employer, error) {
	return model.Employer{ID: 1, Slug: slug}, nil
}

func (s *NopStore) PostingBySourceURL(ctx context.Context, sourceURL string) (*model.Posting, error) {
	return nil, nil
}

func (s *NopStore) CreatePosting(ctx context.Context, p *model.Posting) error { return nil }
func (s *NopStore) UpdatePosting(ctx context.Context, p *model.Posting) error { return nil }

func (s *NopStore) ActiveSourceURLs(ctx context.Context, employerID int64) ([]string, error) {
	return nil, nil
}

func (s *NopStore) DeactivateBySourceURLs(ctx context.Context, employerID int64, sourceURLs []string) error {
	return nil
}

func (s *NopStore) DeactivateExpired(ctx context.Context, asOf time.Time) ([]string, error) {
	return nil, nil
}
