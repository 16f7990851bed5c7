// Package scrape routes a search url to the scraper that understands its host.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/scrape/greenhouse"
	"jobwatch-engine/internal/scrape/lever"
	"jobwatch-engine/internal/scrape/naukri"
	"jobwatch-engine/internal/scrape/smartrecruiters"
	"jobwatch-engine/internal/scrape/types"
	"jobwatch-engine/internal/scrape/util"
	logx "jobwatch-engine/pkg/logx"
)

const DefaultFetchTimeout = 60 * time.Second

var ErrUnsupportedSite = errors.New("no scraper for site")

type Options struct {
	// FetchTimeout bounds one Fetch call including rate limiting.
	FetchTimeout time.Duration
	// RequestsPerSecond and Burst configure the per-host limiter.
	RequestsPerSecond float64
	Burst             int
	// Renderer, when set, loads Naukri pages in a browser.
	Renderer naukri.Renderer
}

// Router picks the first fetcher whose Match accepts the url. It performs
// exactly one attempt per call.
type Router struct {
	fetchers []types.Fetcher
	timeout  time.Duration
	log      logx.Logger
}

// NewRouter wires the built-in scrapers behind one shared client and limiter.
func NewRouter(opts Options, log logx.Logger) *Router {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	hc := util.NewHTTPClient(opts.FetchTimeout)
	hl := util.NewHostLimiter(opts.RequestsPerSecond, opts.Burst)
	return NewRouterWith(opts.FetchTimeout, log,
		naukri.New(hc, hl, naukri.WithRenderer(opts.Renderer), naukri.WithLogger(log)),
		greenhouse.New(hc, hl),
		lever.New(hc, hl),
		smartrecruiters.New(hc, hl),
	)
}

func NewRouterWith(timeout time.Duration, log logx.Logger, fetchers ...types.Fetcher) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Router{fetchers: fetchers, timeout: timeout, log: log.Component("scrape")}
}

func (r *Router) Fetch(ctx context.Context, rawURL string) ([]domain.JobPosting, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("search url %q: must be an absolute http(s) url", rawURL)
	}

	f := r.match(u)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, u.Hostname())
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	jobs, err := f.Fetch(ctx, u)
	if err != nil {
		r.log.Warn("fetch failed",
			logx.String("scraper", f.Name()),
			logx.String("host", u.Hostname()),
			logx.Duration("took", time.Since(start)),
			logx.Err(err),
		)
		return nil, err
	}
	r.log.Info("fetched jobs",
		logx.String("scraper", f.Name()),
		logx.String("host", u.Hostname()),
		logx.Int("count", len(jobs)),
		logx.Duration("took", time.Since(start)),
	)
	return jobs, nil
}

func (r *Router) match(u *url.URL) types.Fetcher {
	for _, f := range r.fetchers {
		if f.Match(u) {
			return f
		}
	}
	return nil
}
