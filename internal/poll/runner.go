package poll

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/events"
	"jobwatch-engine/internal/report"
	"jobwatch-engine/internal/targets"
	logx "jobwatch-engine/pkg/logx"
)

// Runner turns the configured targets into one report per invocation and
// advances the seen set. Targets are processed strictly in order with a
// randomized pause between them; nothing here runs concurrently.
type Runner struct {
	cfg      Config
	store    SeenStore
	source   Source
	notifier Notifier
	report   report.Builder
	log      logx.Logger

	// active guards against overlap inside this process. The file lock only
	// covers other processes: flock lets its own holder lock again.
	active sync.Mutex
	lock   Locker
	status *StatusBoard
	events Publisher

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	delay func() time.Duration
}

type Option func(*Runner)

func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// WithDelay overrides how the pause between targets is drawn.
func WithDelay(delay func() time.Duration) Option { return func(r *Runner) { r.delay = delay } }

func WithLock(l Locker) Option { return func(r *Runner) { r.lock = l } }

func WithStatus(s *StatusBoard) Option { return func(r *Runner) { r.status = s } }

func WithEvents(p Publisher) Option { return func(r *Runner) { r.events = p } }

func New(cfg Config, store SeenStore, source Source, notifier Notifier, rb report.Builder, log logx.Logger, opts ...Option) *Runner {
	if cfg.MinDelay <= 0 && cfg.MaxDelay <= 0 {
		cfg.MinDelay, cfg.MaxDelay = DefaultMinDelay, DefaultMaxDelay
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Runner{
		cfg:      cfg,
		store:    store,
		source:   source,
		notifier: notifier,
		report:   rb,
		log:      log.Component("poll"),
		now:      time.Now,
		sleep:    sleepCtx,
	}
	r.delay = func() time.Duration { return RandomDelay(r.cfg.MinDelay, r.cfg.MaxDelay) }
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	if r.status == nil {
		r.status = NewStatusBoard()
	}
	return r
}

// Status exposes the board this runner reports to.
func (r *Runner) Status() *StatusBoard { return r.status }

// Run performs one full poll: init store, load seen set, fetch every target,
// send exactly one report, then persist the new postings.
//
// Persistence happens only after a successful send. If delivery fails the
// new postings stay unseen and are reported again next run.
func (r *Runner) Run(ctx context.Context) (res Result, err error) {
	if !r.active.TryLock() {
		return res, ErrRunInProgress
	}
	defer r.active.Unlock()

	if r.lock != nil {
		ok, lerr := r.lock.TryLock()
		if lerr != nil {
			return res, fmt.Errorf("acquire run lock: %w", lerr)
		}
		if !ok {
			return res, ErrRunInProgress
		}
		defer func() {
			if uerr := r.lock.Unlock(); uerr != nil {
				r.log.Warn("release run lock failed", logx.Err(uerr))
			}
		}()
	}

	started := r.now()
	r.status.begin(started)
	defer func() { r.status.finish(r.now(), res, err) }()

	if err := r.store.Init(ctx); err != nil {
		return res, fmt.Errorf("init store: %w", err)
	}

	seen, err := r.store.SeenJobs(ctx)
	if err != nil {
		return res, fmt.Errorf("load seen jobs: %w", err)
	}
	acc := newAccumulator(seen)

	tgs := targets.Parse(r.cfg.SearchConfig)
	r.log.Info("run started", logx.Int("targets", len(tgs)), logx.Int("seen", len(seen)))
	r.emit(events.TypeRunStarted, map[string]any{"targets": len(tgs), "seen": len(seen)})

	for i, tg := range tgs {
		sr := r.processTarget(ctx, tg, acc)
		res.Results = append(res.Results, sr)
		r.emit(events.TypeTargetDone, map[string]any{"place": sr.Place, "new": len(sr.Jobs), "failed": sr.Failed})

		if i < len(tgs)-1 {
			d := r.delay()
			r.log.Info("waiting before next request", logx.Duration("delay", d))
			if err := r.sleep(ctx, d); err != nil {
				return res, fmt.Errorf("pacing delay: %w", err)
			}
		}
	}

	res.NewJobs = acc.newJobs
	r.log.Info("new jobs found across all searches", logx.Int("new", len(res.NewJobs)), logx.Int("failed_targets", res.Failed()))

	res.Message = r.report.Build(res.Results, len(res.NewJobs), r.now())

	r.log.Info("sending report", logx.String("destination", r.cfg.Destination))
	if err := r.notifier.Send(ctx, r.cfg.Destination, res.Message); err != nil {
		return res, fmt.Errorf("send report: %w", err)
	}
	res.Delivered = true

	if len(res.NewJobs) > 0 {
		if err := r.store.AddSeenJobs(ctx, res.NewJobs); err != nil {
			return res, fmt.Errorf("persist seen jobs: %w", err)
		}
		res.Persisted = true
	}

	r.log.Info("run finished",
		logx.Int("new", len(res.NewJobs)),
		logx.Duration("took", r.now().Sub(started)),
	)
	r.emit(events.TypeRunFinished, map[string]any{"new": len(res.NewJobs), "failed": res.Failed(), "delivered": res.Delivered})
	return res, nil
}

func (r *Runner) emit(typ string, data any) {
	if r.events == nil {
		return
	}
	r.events.Publish(events.MakeEvent("", typ, 1, data))
}

func (r *Runner) processTarget(ctx context.Context, tg domain.SearchTarget, acc *accumulator) domain.SourceResult {
	log := r.log.With(logx.String("url", tg.URL), logx.String("place", tg.Place))
	log.Info("fetching jobs")

	jobs, err := r.source.Fetch(ctx, tg.URL)
	if err != nil {
		ferr := &SourceFetchError{URL: tg.URL, Place: tg.Place, Err: err}
		log.Error("error fetching jobs", logx.Err(ferr))
		return domain.SourceResult{Place: tg.Label(UnknownPlace), Failed: true, Err: ferr}
	}

	fresh := acc.admit(jobs, tg.Place)
	log.Info("fetched jobs", logx.Int("fetched", len(jobs)), logx.Int("new", len(fresh)))
	return domain.SourceResult{Place: tg.Label(DefaultPlace), Jobs: fresh}
}

// accumulator is owned by a single run. seen grows as postings are admitted
// so a url found under an earlier target is never reported again later in
// the same run.
type accumulator struct {
	seen    map[string]struct{}
	newJobs []domain.JobPosting
}

func newAccumulator(seen []domain.SeenRecord) *accumulator {
	m := make(map[string]struct{}, len(seen))
	for _, s := range seen {
		m[s.URL] = struct{}{}
	}
	return &accumulator{seen: m}
}

// admit returns the unseen postings in their original order, tagged with place.
func (a *accumulator) admit(jobs []domain.JobPosting, place string) []domain.JobPosting {
	fresh := make([]domain.JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if _, ok := a.seen[j.URL]; ok {
			continue
		}
		a.seen[j.URL] = struct{}{}
		fresh = append(fresh, j.WithPlace(place))
	}
	a.newJobs = append(a.newJobs, fresh...)
	return fresh
}

// RandomDelay draws uniformly from [min, max] at millisecond granularity.
func RandomDelay(minDelay, maxDelay time.Duration) time.Duration {
	lo, hi := minDelay.Milliseconds(), maxDelay.Milliseconds()
	if hi <= lo {
		return time.Duration(lo) * time.Millisecond
	}
	return time.Duration(lo+rand.Int63n(hi-lo+1)) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
