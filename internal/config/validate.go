package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus what is wrong with it.
// The token is not required here: it may still come from the keyring.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Telegram.Token = strings.TrimSpace(out.Telegram.Token)
	out.Telegram.ChatID = strings.TrimSpace(out.Telegram.ChatID)
	out.Report.Title = strings.TrimSpace(out.Report.Title)
	if out.Report.Title == "" {
		out.Report.Title = DefaultTitle
	}
	if strings.TrimSpace(out.Report.Timezone) == "" {
		out.Report.Timezone = DefaultTimezone
	}
	if strings.TrimSpace(out.App.LogLevel) == "" {
		out.App.LogLevel = "info"
	}

	if out.Telegram.ChatID == "" {
		res.addErr("telegram.chat_id (TELEGRAM_CHAT_ID) is required")
	}
	if out.Telegram.APIURL != "" {
		if u, err := url.Parse(out.Telegram.APIURL); err != nil || u.Host == "" {
			res.addErr("telegram.api_url must be an absolute url")
		}
	}

	if strings.TrimSpace(out.Search.Config) == "" {
		res.addWarn("search.config is empty; every run will report a single failed target")
	}

	if out.Search.MinDelay < 0 || out.Search.MaxDelay < 0 {
		res.addErr("search.min_delay and search.max_delay must be >= 0")
	} else if out.Search.MinDelay > out.Search.MaxDelay {
		res.addErr("search.min_delay (%s) is greater than search.max_delay (%s)", out.Search.MinDelay, out.Search.MaxDelay)
	} else if out.Search.MaxDelay == 0 {
		res.addErr("search.max_delay must be > 0; pacing between targets cannot be turned off")
	} else if out.Search.MaxDelay < time.Second {
		res.addWarn("search pacing is very low (max %s) and may get requests blocked", out.Search.MaxDelay)
	}

	if out.Search.FetchTimeout <= 0 {
		res.addErr("search.fetch_timeout must be > 0")
	}
	if out.Search.RequestsPerSecond <= 0 {
		res.addErr("search.requests_per_second must be > 0")
	}
	out.Search.Browser = strings.ToLower(strings.TrimSpace(out.Search.Browser))
	switch out.Search.Browser {
	case "":
		out.Search.Browser = BrowserChrome
	case BrowserChrome:
	case BrowserOff:
		res.addWarn("search.browser is off; Naukri builds its results in the browser and a plain GET may find none")
	default:
		res.addErr("search.browser must be %q or %q, got %q", BrowserChrome, BrowserOff, out.Search.Browser)
	}

	if _, err := out.Location(); err != nil {
		res.addErr("%v", err)
	}

	if s := strings.TrimSpace(out.App.Schedule); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			res.addErr("app.schedule %q: %v", s, err)
		}
	}
	if out.App.HTTPAddr != "" && out.App.Schedule == "" {
		res.addWarn("app.http_addr is set without app.schedule; runs only happen via POST /run")
	}

	return out, res
}

// Validate is the final startup gate, applied once every credential source
// has been consulted.
func Validate(cfg Config) error {
	var problems []string
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		problems = append(problems, "telegram.token (TELEGRAM_BOT_TOKEN) is required and was not found in the environment, config file or keyring")
	}
	_, v := NormalizeAndValidate(cfg)
	problems = append(problems, v.Errors...)
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
