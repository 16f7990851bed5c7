package smartrecruiters

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

const (
	DefaultAPIBase = "https://api.smartrecruiters.com/v1/companies"
	DefaultJobBase = "https://jobs.smartrecruiters.com"

	pageSize  = 100
	maxOffset = 5000
)

type Scraper struct {
	// APIBase is the companies endpoint; /<slug>/postings is appended to it.
	APIBase string
	// JobBase is where posting pages live: <JobBase>/<slug>/<id>.
	JobBase string

	hc      *http.Client
	limiter *util.HostLimiter
}

func New(hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if hc == nil {
		hc = util.NewHTTPClient(0)
	}
	return &Scraper{APIBase: DefaultAPIBase, JobBase: DefaultJobBase, hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "smartrecruiters" }

// Match accepts jobs.smartrecruiters.com/<slug> and careers.smartrecruiters.com/<slug>.
func (s *Scraper) Match(u *url.URL) bool {
	h := strings.ToLower(u.Hostname())
	return h == "jobs.smartrecruiters.com" || h == "careers.smartrecruiters.com"
}

// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
}

type posting struct {
	ID   string `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

func (s *Scraper) Fetch(ctx context.Context, target *url.URL) ([]domain.JobPosting, error) {
	slug := util.PathSegment(target, 0)
	if slug == "" {
		return nil, fmt.Errorf("smartrecruiters: no company slug in %s", target)
	}
	base := fmt.Sprintf("%s/%s/postings", strings.TrimRight(s.APIBase, "/"), url.PathEscape(slug))
	jobBase := strings.TrimRight(s.JobBase, "/")

	var out []domain.JobPosting
	for offset := 0; offset <= maxOffset; offset += pageSize {
		pr, err := s.page(ctx, fmt.Sprintf("%s?limit=%d&offset=%d", base, pageSize, offset))
		if err != nil {
			return nil, err
		}
		if len(pr.Content) == 0 {
			break
		}
		for _, p := range pr.Content {
			title := util.CleanText(p.Name)
			id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID, p.Ref))
			if title == "" || id == "" {
				continue
			}
			out = append(out, domain.JobPosting{
				Title: title,
				URL:   fmt.Sprintf("%s/%s/%s", jobBase, slug, url.PathEscape(id)),
			})
		}
		if pr.TotalFound > 0 && offset+pageSize >= pr.TotalFound {
			break
		}
	}
	return out, nil
}

func (s *Scraper) page(ctx context.Context, u string) (postingsResponse, error) {
	var pr postingsResponse
	hdr := http.Header{"Accept": []string{"application/json"}}
	body, err := util.Get(ctx, s.hc, s.limiter, u, hdr)
	if err != nil {
		return pr, fmt.Errorf("smartrecruiters get: %w", err)
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(&pr); err != nil {
		return pr, fmt.Errorf("smartrecruiters decode: %w", err)
	}
	return pr, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
