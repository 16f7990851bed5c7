package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"jobwatch-engine/internal/config"
	"jobwatch-engine/internal/events"
	"jobwatch-engine/internal/httpapi"
	"jobwatch-engine/internal/notify"
	"jobwatch-engine/internal/poll"
	"jobwatch-engine/internal/report"
	"jobwatch-engine/internal/runlock"
	"jobwatch-engine/internal/scheduler"
	"jobwatch-engine/internal/scrape"
	"jobwatch-engine/internal/scrape/browser"
	"jobwatch-engine/internal/secrets"
	"jobwatch-engine/internal/store"
	logx "jobwatch-engine/pkg/logx"
)

const (
	exitOK          = 0
	exitStoreInit   = 1
	exitFailure     = 1
	exitConfigError = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath  string
	envFile     string
	schedule    string
	serve       string
	dryRun      bool
	logJSON     bool
	storeToken  bool
	clearToken  bool
	writeConfig string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("jobwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	fs.StringVar(&f.envFile, "env", ".env", "dotenv file to load if present")
	fs.StringVar(&f.schedule, "schedule", "", "cron spec; run repeatedly instead of once (default $"+config.EnvSchedule+")")
	fs.StringVar(&f.serve, "serve", "", "listen address for the status API (default $"+config.EnvHTTPAddr+")")
	fs.BoolVar(&f.dryRun, "dry-run", false, "log the report instead of sending it to Telegram")
	fs.BoolVar(&f.logJSON, "log-json", false, "emit JSON log lines")
	fs.BoolVar(&f.storeToken, "store-token", false, "save $"+config.EnvBotToken+" in the OS keyring for the configured chat and exit")
	fs.BoolVar(&f.clearToken, "clear-token", false, "remove the keyring token for the configured chat and exit")
	fs.StringVar(&f.writeConfig, "write-config", "", "write the effective config (without token) to this path and exit")
	return f, fs.Parse(args)
}

func newLogger(level string, asJSON bool, out io.Writer) logx.Logger {
	if asJSON {
		return logx.NewJSON(level, out)
	}
	return logx.New(level, out)
}

func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return exitConfigError
	}
	boot := newLogger(getenv(config.EnvLogLevel), f.logJSON, stderr)

	if err := config.LoadDotEnv(f.envFile); err != nil {
		boot.Error("load env file", logx.Err(err))
		return exitConfigError
	}
	// LoadDotEnv only touches the process environment.
	if f.envFile != "" {
		getenv = overlayProcessEnv(getenv)
	}

	cfg, warnings, err := config.FromEnvironment(f.configPath, getenv)
	if err != nil {
		boot.Error("configuration error", logx.Err(err))
		return exitConfigError
	}
	if f.schedule != "" {
		cfg.App.Schedule = f.schedule
	}
	if f.serve != "" {
		cfg.App.HTTPAddr = f.serve
	}

	log := newLogger(cfg.App.LogLevel, f.logJSON, stderr)
	for _, w := range warnings {
		log.Warn("config warning", logx.String("warning", w))
	}

	tok, kerr := secrets.ResolveBotToken(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if kerr != nil {
		log.Warn("keyring lookup failed", logx.Err(kerr))
	}
	cfg.Telegram.Token = tok

	switch {
	case f.storeToken:
		if err := secrets.SetBotToken(cfg.Telegram.ChatID, cfg.Telegram.Token); err != nil {
			log.Error("store token in keyring", logx.Err(err))
			return exitConfigError
		}
		log.Info("token stored in keyring", logx.String("account", secrets.TelegramAccount(cfg.Telegram.ChatID)))
		return exitOK
	case f.clearToken:
		err := secrets.DeleteBotToken(cfg.Telegram.ChatID)
		switch {
		case errors.Is(err, secrets.ErrTokenNotFound):
			log.Info("no token stored in keyring", logx.String("account", secrets.TelegramAccount(cfg.Telegram.ChatID)))
		case err != nil:
			log.Error("remove token from keyring", logx.Err(err))
			return exitConfigError
		default:
			log.Info("token removed from keyring", logx.String("account", secrets.TelegramAccount(cfg.Telegram.ChatID)))
		}
		return exitOK
	case f.writeConfig != "":
		if err := config.SaveAtomic(f.writeConfig, cfg); err != nil {
			log.Error("write config", logx.Err(err))
			return exitConfigError
		}
		log.Info("config written", logx.String("path", f.writeConfig))
		return exitOK
	}

	if !f.dryRun {
		if err := config.Validate(cfg); err != nil {
			log.Error("configuration error", logx.Err(err))
			return exitConfigError
		}
	} else if _, v := config.NormalizeAndValidate(cfg); !v.OK() {
		log.Error("configuration error", logx.Err(&config.ConfigError{Problems: v.Errors}))
		return exitConfigError
	}

	a, err := newApp(cfg, f.dryRun, log)
	if err != nil {
		return exitCode(err, log)
	}
	defer func() { _ = a.store.Close() }()

	// Open the database before anything touches the network or the run lock
	// so a broken store is reported as such.
	if err := a.store.Init(ctx); err != nil {
		return exitCode(err, log)
	}

	if cfg.App.Schedule == "" && cfg.App.HTTPAddr == "" {
		return exitCode(a.runOnce(ctx), log)
	}
	return a.serve(ctx)
}

// overlayProcessEnv prefers values that LoadDotEnv placed in the process
// environment over an injected getenv that lacks them.
func overlayProcessEnv(getenv func(string) string) func(string) string {
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return os.Getenv(k)
	}
}

type app struct {
	cfg    config.Config
	log    logx.Logger
	store  *store.SeenStore
	runner *poll.Runner
	hub    *events.Hub
}

func newApp(cfg config.Config, dryRun bool, log logx.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, &config.ConfigError{Err: err}
	}

	var n poll.Notifier
	if dryRun {
		n = notify.NewLogNotifier(log)
	} else {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			Token:  cfg.Telegram.Token,
			APIURL: cfg.Telegram.APIURL,
		}, log)
		if err != nil {
			return nil, &config.ConfigError{Err: err}
		}
		n = tg
	}

	dbPath := cfg.DatabasePath()
	st := store.NewSeenStore(dbPath, log)
	sopts := scrape.Options{
		FetchTimeout:      cfg.Search.FetchTimeout,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		Burst:             1,
	}
	if cfg.Search.Browser != config.BrowserOff {
		sopts.Renderer = browser.NewChrome(cfg.Search.ChromePath)
	}
	src := scrape.NewRouter(sopts, log)
	hub := events.NewHub()

	runner := poll.New(poll.Config{
		SearchConfig: cfg.Search.Config,
		Destination:  cfg.Telegram.ChatID,
		MinDelay:     cfg.Search.MinDelay,
		MaxDelay:     cfg.Search.MaxDelay,
	}, st, src, n, report.New(cfg.Report.Title, loc), log,
		poll.WithLock(runlock.New(runlock.PathFor(dbPath))),
		poll.WithEvents(hub),
	)
	return &app{cfg: cfg, log: log, store: st, runner: runner, hub: hub}, nil
}

func (a *app) runOnce(ctx context.Context) error {
	_, err := a.runner.Run(ctx)
	if err != nil {
		a.hub.Publish(events.MakeEvent("", events.TypeRunFailed, 1, map[string]string{"error": err.Error()}))
	}
	return err
}

// exitCode maps a one-shot run's outcome. Configuration and store
// initialization are fatal; fetch, delivery and persistence failures are
// logged.
func exitCode(err error, log logx.Logger) int {
	var ierr *store.InitError
	switch {
	case err == nil:
		return exitOK
	case config.IsConfigError(err):
		log.Error("configuration error", logx.Err(err))
		return exitConfigError
	case errors.As(err, &ierr):
		log.Error("database initialization failed", logx.Err(err))
		return exitStoreInit
	case errors.Is(err, poll.ErrRunInProgress):
		log.Warn("skipping run", logx.Err(err))
		return exitOK
	default:
		log.Error("run failed", logx.Err(err))
		return exitOK
	}
}

func (a *app) serve(ctx context.Context) int {
	g, gctx := errgroup.WithContext(ctx)

	if spec := strings.TrimSpace(a.cfg.App.Schedule); spec != "" {
		loc, _ := a.cfg.Location()
		g.Go(func() error {
			return scheduler.Run(gctx, scheduler.Options{
				Name:       "poll",
				Spec:       spec,
				Location:   loc,
				RunAtStart: true,
			}, func(ctx context.Context) error {
				err := a.runOnce(ctx)
				if errors.Is(err, poll.ErrRunInProgress) {
					a.log.Warn("skipping tick", logx.Err(err))
					return nil
				}
				return err
			}, a.log)
		})
	}

	if addr := strings.TrimSpace(a.cfg.App.HTTPAddr); addr != "" {
		h := httpapi.NewHandler(httpapi.Deps{
			Hub:     a.hub,
			Status:  a.runner.Status(),
			Seen:    a.store,
			Config:  a.cfg,
			RunOnce: a.runOnce,
			BaseCtx: gctx,
			SetToken: func(token string) error {
				return secrets.SetBotToken(a.cfg.Telegram.ChatID, token)
			},
			Log: a.log,
		})
		g.Go(func() error { return httpapi.Serve(gctx, addr, h, a.log.Component("http")) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("engine stopped", logx.Err(err))
		return exitFailure
	}
	a.log.Info("engine stopped")
	return exitOK
}
