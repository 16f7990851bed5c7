package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/scrape/util"
)

const DefaultAPIBase = "https://api.lever.co/v0/postings"

type Scraper struct {
	// APIBase is the postings endpoint; the company slug is appended to it.
	APIBase string

	hc      *http.Client
	limiter *util.HostLimiter
}

func New(hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if hc == nil {
		hc = util.NewHTTPClient(0)
	}
	return &Scraper{APIBase: DefaultAPIBase, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "lever" }

// Match accepts jobs.lever.co/<slug> pages.
func (s *Scraper) Match(u *url.URL) bool {
	return strings.EqualFold(u.Hostname(), "jobs.lever.co")
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
}

func (s *Scraper) Fetch(ctx context.Context, target *url.URL) ([]domain.JobPosting, error) {
	slug := util.PathSegment(target, 0)
	if slug == "" {
		return nil, fmt.Errorf("lever: no company slug in %s", target)
	}
	apiURL := fmt.Sprintf("%s/%s?mode=json", strings.TrimRight(s.APIBase, "/"), url.PathEscape(slug))

	hdr := http.Header{"Accept": []string{"application/json"}}
	body, err := util.Get(ctx, s.hc, s.limiter, apiURL, hdr)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer body.Close()

	var postings []leverPosting
	if err := json.NewDecoder(body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	out := make([]domain.JobPosting, 0, len(postings))
	for _, p := range postings {
		title := util.CleanText(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}
		out = append(out, domain.JobPosting{Title: title, URL: util.CanonicalURL(p.HostedURL)})
	}
	return out, nil
}
