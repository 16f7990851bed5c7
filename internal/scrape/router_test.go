package scrape

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobwatch-engine/internal/domain"
	logx "jobwatch-engine/pkg/logx"
)

type stubFetcher struct {
	name  string
	host  string
	jobs  []domain.JobPosting
	err   error
	calls int
	wait  bool
}

func (s *stubFetcher) Name() string          { return s.name }
func (s *stubFetcher) Match(u *url.URL) bool { return strings.HasSuffix(u.Hostname(), s.host) }

func (s *stubFetcher) Fetch(ctx context.Context, _ *url.URL) ([]domain.JobPosting, error) {
	s.calls++
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.jobs, s.err
}

func TestRouter_DispatchesByHost(t *testing.T) {
	a := &stubFetcher{name: "a", host: "a.example", jobs: []domain.JobPosting{{Title: "A", URL: "https://a.example/1"}}}
	b := &stubFetcher{name: "b", host: "b.example"}
	r := NewRouterWith(time.Second, logx.Nop(), a, b)

	jobs, err := r.Fetch(context.Background(), " https://www.a.example/search?q=go ")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestRouter_SingleAttemptOnError(t *testing.T) {
	a := &stubFetcher{name: "a", host: "a.example", err: errors.New("boom")}
	r := NewRouterWith(time.Second, logx.Nop(), a)

	_, err := r.Fetch(context.Background(), "https://a.example/x")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, a.calls)
}

func TestRouter_UnsupportedSite(t *testing.T) {
	r := NewRouterWith(time.Second, logx.Nop(), &stubFetcher{host: "a.example"})
	_, err := r.Fetch(context.Background(), "https://unknown.example/x")
	assert.ErrorIs(t, err, ErrUnsupportedSite)
}

func TestRouter_RejectsNonHTTPURL(t *testing.T) {
	r := NewRouterWith(time.Second, logx.Nop(), &stubFetcher{host: "a.example"})
	for _, raw := range []string{"", "not a url", "ftp://a.example/x", "/relative"} {
		_, err := r.Fetch(context.Background(), raw)
		assert.Error(t, err, raw)
	}
}

func TestRouter_TimeoutBoundsFetch(t *testing.T) {
	a := &stubFetcher{name: "a", host: "a.example", wait: true}
	r := NewRouterWith(20*time.Millisecond, logx.Nop(), a)

	_, err := r.Fetch(context.Background(), "https://a.example/x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRouter_KnownSites(t *testing.T) {
	r := NewRouter(Options{}, logx.Nop())
	for raw, want := range map[string]string{
		"https://www.naukri.com/react-jobs":     "naukri",
		"https://boards.greenhouse.io/acme":     "greenhouse",
		"https://jobs.lever.co/acme":            "lever",
		"https://jobs.smartrecruiters.com/acme": "smartrecruiters",
	} {
		u, _ := url.Parse(raw)
		f := r.match(u)
		require.NotNil(t, f, raw)
		assert.Equal(t, want, f.Name())
	}
}

type pageRenderer struct{ html string }

func (p pageRenderer) Render(context.Context, string, string) (string, error) { return p.html, nil }

func TestNewRouter_NaukriUsesRenderer(t *testing.T) {
	r := NewRouter(Options{Renderer: pageRenderer{
		html: `<div class="row1"><h2><a class="title" href="/job-listings-1">Go Dev</a></h2></div>`,
	}}, logx.Nop())

	jobs, err := r.Fetch(context.Background(), "https://www.naukri.com/golang-jobs")
	require.NoError(t, err)
	assert.Equal(t, []domain.JobPosting{{Title: "Go Dev", URL: "https://www.naukri.com/job-listings-1"}}, jobs)
}
