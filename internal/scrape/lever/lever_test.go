package lever

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobwatch-engine/internal/domain"
)

func TestFetch_Postings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/postings/acme", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
  {"id":"a1","text":"Backend Engineer","hostedUrl":"https://jobs.lever.co/acme/a1","categories":{"location":"Pune"}},
  {"id":"","text":"No id","hostedUrl":"https://jobs.lever.co/acme/x"},
  {"id":"a2","text":"  ","hostedUrl":"https://jobs.lever.co/acme/a2"},
  {"id":"a3","text":"Site Reliability  Engineer","hostedUrl":"https://jobs.lever.co/acme/a3?lever-source=x&utm_medium=y"}
]`)
	}))
	defer srv.Close()

	s := New(nil, nil)
	s.APIBase = srv.URL + "/v0/postings/"
	target, _ := url.Parse("https://jobs.lever.co/acme")

	jobs, err := s.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, []domain.JobPosting{
		{Title: "Backend Engineer", URL: "https://jobs.lever.co/acme/a1"},
		{Title: "Site Reliability Engineer", URL: "https://jobs.lever.co/acme/a3?lever-source=x"},
	}, jobs)
}

func TestFetch_MissingSlug(t *testing.T) {
	target, _ := url.Parse("https://jobs.lever.co/")
	_, err := New(nil, nil).Fetch(context.Background(), target)
	assert.Error(t, err)
}

func TestFetch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"}`)
	}))
	defer srv.Close()

	s := New(nil, nil)
	s.APIBase = srv.URL
	target, _ := url.Parse("https://jobs.lever.co/acme")
	_, err := s.Fetch(context.Background(), target)
	assert.ErrorContains(t, err, "lever decode")
}
