package naukri

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/scrape/browser"
	"jobwatch-engine/internal/scrape/util"
)

const resultsPage = `<html><body>
<div class="srp">
  <div class="row1"><h2><a class="title" href="https://www.naukri.com/job-listings-react-developer-1?src=srp&utm_source=feed">  React   Developer </a></h2></div>
  <div class="row1"><h2><a class="title" href="/job-listings-nextjs-engineer-2">Next.js Engineer</a></h2></div>
  <div class="row1"><h3><a class="title" href="/job-listings-ignored-3">Wrong heading</a></h3></div>
  <div class="row1"><h2><a class="title" href="/job-listings-4">   </a></h2></div>
  <div class="row2"><h2><a class="title" href="/job-listings-5">Not a row1</a></h2></div>
</div>
</body></html>`

func serve(t *testing.T, body string, status int) *url.URL {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, util.BrowserUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL + "/react-jobs?k=react")
	require.NoError(t, err)
	return u
}

func TestFetch_ParsesResultRows(t *testing.T) {
	target := serve(t, resultsPage, http.StatusOK)
	s := New(nil, util.NewHostLimiter(50, 5))

	jobs, err := s.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, []domain.JobPosting{
		{Title: "React Developer", URL: "https://www.naukri.com/job-listings-react-developer-1?src=srp"},
		{Title: "Next.js Engineer", URL: "http://" + target.Host + "/job-listings-nextjs-engineer-2"},
	}, jobs)
}

func TestFetch_NoRowsIsEmpty(t *testing.T) {
	target := serve(t, `<html><body><p>No results</p></body></html>`, http.StatusOK)
	jobs, err := New(nil, nil).Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestFetch_HTTPErrorFails(t *testing.T) {
	target := serve(t, "blocked", http.StatusForbidden)
	_, err := New(nil, nil).Fetch(context.Background(), target)
	require.Error(t, err)
	var se *util.StatusError
	assert.ErrorAs(t, err, &se)
}

type stubRenderer struct {
	html    string
	err     error
	gotURL  string
	gotWait string
}

func (r *stubRenderer) Render(_ context.Context, rawURL, waitFor string) (string, error) {
	r.gotURL, r.gotWait = rawURL, waitFor
	return r.html, r.err
}

func TestFetch_RenderedPage(t *testing.T) {
	r := &stubRenderer{html: resultsPage}
	target, _ := url.Parse("https://www.naukri.com/react-jobs?k=react")

	jobs, err := New(nil, util.NewHostLimiter(50, 5), WithRenderer(r)).Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target.String(), r.gotURL)
	assert.Equal(t, "div.row1", r.gotWait)
	assert.Equal(t, []domain.JobPosting{
		{Title: "React Developer", URL: "https://www.naukri.com/job-listings-react-developer-1?src=srp"},
		{Title: "Next.js Engineer", URL: "https://www.naukri.com/job-listings-nextjs-engineer-2"},
	}, jobs)
}

func TestFetch_RenderedWaitTimeoutIsEmpty(t *testing.T) {
	r := &stubRenderer{err: fmt.Errorf("%w: div.row1", browser.ErrWaitTimeout)}
	target, _ := url.Parse("https://www.naukri.com/react-jobs")

	jobs, err := New(nil, nil, WithRenderer(r)).Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestFetch_RenderFailureFails(t *testing.T) {
	boom := errors.New("chrome failed to start")
	target, _ := url.Parse("https://www.naukri.com/react-jobs")

	_, err := New(nil, nil, WithRenderer(&stubRenderer{err: boom})).Fetch(context.Background(), target)
	assert.ErrorIs(t, err, boom)
}

func TestMatch(t *testing.T) {
	s := New(nil, nil)
	for raw, want := range map[string]bool{
		"https://www.naukri.com/react-jobs": true,
		"https://naukri.com/x":              true,
		"https://notnaukri.com/x":           false,
		"https://boards.greenhouse.io/acme": false,
	} {
		u, _ := url.Parse(raw)
		assert.Equal(t, want, s.Match(u), raw)
	}
}
