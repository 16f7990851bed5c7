package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	logx "jobwatch-engine/pkg/logx"
)

type Task func(ctx context.Context) error

type Options struct {
	Name string
	// Spec is a standard five-field cron expression or a descriptor such as
	// "@hourly" or "@every 30m".
	Spec     string
	Location *time.Location
	// RunAtStart fires the task once before the first scheduled tick.
	RunAtStart bool
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec validates a schedule without starting anything.
func ParseSpec(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run fires task on the schedule until ctx is done. A tick that arrives
// while the previous run is still going is skipped.
func Run(ctx context.Context, opts Options, task Task, log logx.Logger) error {
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.Component("scheduler").With(logx.String("job", opts.Name))
	if _, err := ParseSpec(opts.Spec); err != nil {
		return err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error("task failed", logx.Duration("took", time.Since(start)), logx.Err(err))
			return
		}
		log.Debug("task done", logx.Duration("took", time.Since(start)))
	}
	id, err := c.AddFunc(strings.TrimSpace(opts.Spec), run)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", opts.Spec, err)
	}

	if opts.RunAtStart {
		// Goes through the chain so it counts as "still running" for ticks.
		go c.Entry(id).WrappedJob.Run()
	}

	c.Start()
	log.Info("scheduler started", logx.String("spec", opts.Spec), logx.String("tz", loc.String()),
		logx.Time("next", c.Entry(id).Next))

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("scheduler stopped")
	return nil
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
