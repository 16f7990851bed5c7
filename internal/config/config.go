package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSearchURL = "https://www.naukri.com/react-dot-js-nextjs-jobs-in-delhi-ncr?k=react.js%2C%20nextjs&l=delhi%20%2F%20ncr%2C%20hyderabad%2C%20pune&nignbevent_src=jobsearchDeskGNB&jobAge=1&experience=4&ctcFilter=10to15&ctcFilter=15to25&ctcFilter=6to10&ctcFilter=25to50"
	DefaultTimezone  = "Asia/Kolkata"
	DefaultTitle     = "Naukri Job Alert"
	DefaultDataDir   = "data"
	DefaultDBFile    = "seen_jobs.db"

	// Search.Browser values.
	BrowserChrome = "chrome"
	BrowserOff    = "off"
)

type Config struct {
	Telegram struct {
		// Token is never written back to disk; see SaveAtomic.
		Token  string `yaml:"token,omitempty"`
		ChatID string `yaml:"chat_id"`
		APIURL string `yaml:"api_url,omitempty"`
	} `yaml:"telegram"`

	Search struct {
		// Config is the comma separated "url|place" list.
		Config            string        `yaml:"config"`
		MinDelay          time.Duration `yaml:"min_delay"`
		MaxDelay          time.Duration `yaml:"max_delay"`
		FetchTimeout      time.Duration `yaml:"fetch_timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		// Browser selects how Naukri pages are loaded: "chrome" renders
		// them headless, "off" uses a plain GET.
		Browser    string `yaml:"browser"`
		ChromePath string `yaml:"chrome_path,omitempty"`
	} `yaml:"search"`

	Report struct {
		Title    string `yaml:"title"`
		Timezone string `yaml:"timezone"`
	} `yaml:"report"`

	App struct {
		DataDir  string `yaml:"data_dir"`
		DBPath   string `yaml:"db_path,omitempty"`
		Schedule string `yaml:"schedule,omitempty"`
		HTTPAddr string `yaml:"http_addr,omitempty"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`
}

// ConfigError means the process cannot start with the given settings.
type ConfigError struct {
	Problems []string
	Err      error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config invalid")
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	for _, p := range e.Problems {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func Default() Config {
	var cfg Config
	cfg.Search.Config = DefaultSearchURL
	cfg.Search.MinDelay = 5 * time.Second
	cfg.Search.MaxDelay = 15 * time.Second
	cfg.Search.FetchTimeout = 60 * time.Second
	cfg.Search.RequestsPerSecond = 1
	cfg.Search.Browser = BrowserChrome
	cfg.Report.Title = DefaultTitle
	cfg.Report.Timezone = DefaultTimezone
	cfg.App.DataDir = DefaultDataDir
	cfg.App.LogLevel = "info"
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &ConfigError{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, &ConfigError{Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return cfg, nil
}

// DatabasePath is App.DBPath, or the default file inside App.DataDir.
func (c Config) DatabasePath() string {
	if p := strings.TrimSpace(c.App.DBPath); p != "" {
		return p
	}
	dir := strings.TrimSpace(c.App.DataDir)
	if dir == "" {
		dir = DefaultDataDir
	}
	return filepath.Join(dir, DefaultDBFile)
}

func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Report.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("report.timezone %q: %w", tz, err)
	}
	return loc, nil
}

// IsConfigError reports whether err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
