package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

type Scraper struct {
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if hc == nil {
		hc = util.NewHTTPClient(0)
	}
	return &Scraper{hc: hc, limiter: limiter}
}

func (s *Scraper) Name() string { return "greenhouse" }

// Match accepts board pages such as boards.greenhouse.io/<slug>.
func (s *Scraper) Match(u *url.URL) bool {
	h := strings.ToLower(u.Hostname())
	return h == "boards.greenhouse.io" || h == "job-boards.greenhouse.io"
}

func (s *Scraper) Fetch(ctx context.Context, target *url.URL) ([]domain.JobPosting, error) {
	body, err := util.Get(ctx, s.hc, s.limiter, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get board: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("greenhouse parse board html: %w", err)
	}

	// Boards link each opening as /<slug>/jobs/<id>, sometimes more than once.
	seen := map[string]bool{}
	var jobs []domain.JobPosting
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := util.ResolveURL(target, href)
		if abs == "" {
			return
		}
		jobID := extractJobID(abs)
		if jobID == "" || seen[jobID] {
			return
		}

		title := util.CleanText(a.Text())
		if title == "" || util.LooksLikeJunkTitle(title) {
			return
		}
		seen[jobID] = true
		jobs = append(jobs, domain.JobPosting{Title: title, URL: util.CanonicalURL(abs)})
	})
	return jobs, nil
}

func extractJobID(u string) string {
	// split on /jobs/ and take the run of digits after it
	_, tail, ok := strings.Cut(u, "/jobs/")
	if !ok {
		return ""
	}
	end := 0
	for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
		end++
	}
	return tail[:end]
}
