package naukri

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/scrape/browser"
	"jobwatch-engine/internal/scrape/util"
	logx "jobwatch-engine/pkg/logx"

	"github.com/PuerkitoBio/goquery"
)

const (
	rowSelector   = "div.row1"
	titleSelector = "h2 > a.title"
)

// Renderer returns a page's HTML after its scripts have produced an element
// matching waitFor. browser.ErrWaitTimeout means that element never appeared.
type Renderer interface {
	Render(ctx context.Context, rawURL, waitFor string) (string, error)
}

type Scraper struct {
	hc       *http.Client
	limiter  *util.HostLimiter
	renderer Renderer
	log      logx.Logger
}

type Option func(*Scraper)

// WithRenderer loads pages through r instead of a plain GET. Naukri builds
// its result list client side, so production runs set this.
func WithRenderer(r Renderer) Option { return func(s *Scraper) { s.renderer = r } }

func WithLogger(log logx.Logger) Option { return func(s *Scraper) { s.log = log } }

func New(hc *http.Client, limiter *util.HostLimiter, opts ...Option) *Scraper {
	if hc == nil {
		hc = util.NewHTTPClient(0)
	}
	s := &Scraper{hc: hc, limiter: limiter}
	for _, o := range opts {
		o(s)
	}
	if s.log.IsZero() {
		s.log = logx.Nop()
	}
	s.log = s.log.Component("scrape:naukri")
	return s
}

func (s *Scraper) Name() string { return "naukri" }

func (s *Scraper) Match(u *url.URL) bool {
	h := strings.ToLower(u.Hostname())
	return h == "naukri.com" || strings.HasSuffix(h, ".naukri.com")
}

// Fetch loads a search result page and reads one posting per result row. A
// page without result rows yields no postings rather than an error.
func (s *Scraper) Fetch(ctx context.Context, target *url.URL) ([]domain.JobPosting, error) {
	if s.renderer != nil {
		return s.fetchRendered(ctx, target)
	}

	body, err := util.Get(ctx, s.hc, s.limiter, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("naukri get: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("naukri parse html: %w", err)
	}
	return parseRows(doc, target), nil
}

func (s *Scraper) fetchRendered(ctx context.Context, target *url.URL) ([]domain.JobPosting, error) {
	if err := s.limiter.WaitURL(ctx, target.String()); err != nil {
		return nil, err
	}
	html, err := s.renderer.Render(ctx, target.String(), rowSelector)
	if errors.Is(err, browser.ErrWaitTimeout) {
		s.log.Warn("no result rows appeared; assuming no jobs or a changed page layout",
			logx.String("url", target.String()),
			logx.String("selector", rowSelector),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("naukri render: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("naukri parse html: %w", err)
	}
	return parseRows(doc, target), nil
}

func parseRows(doc *goquery.Document, base *url.URL) []domain.JobPosting {
	var out []domain.JobPosting
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		a := row.Find(titleSelector).First()
		if a.Length() == 0 {
			return
		}
		title := util.CleanText(a.Text())
		href, _ := a.Attr("href")
		link := util.CanonicalURL(util.ResolveURL(base, href))
		if title == "" || link == "" {
			return
		}
		out = append(out, domain.JobPosting{Title: title, URL: link})
	})
	return out
}
