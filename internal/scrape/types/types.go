package types

import (
	"context"
	"net/url"

	"jobwatch-engine/internal/domain"
)

// Fetcher scrapes one kind of listing page. Fetch returns postings without a
// place; the caller stamps the search target's place on them.
type Fetcher interface {
	Name() string
	Match(u *url.URL) bool
	Fetch(ctx context.Context, target *url.URL) ([]domain.JobPosting, error)
}
