package config

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvBotToken     = "TELEGRAM_BOT_TOKEN"
	EnvChatID       = "TELEGRAM_CHAT_ID"
	EnvTelegramAPI  = "TELEGRAM_API_URL"
	EnvSearchURL    = "SEARCH_URL"
	EnvDataDir      = "JOBWATCH_DATA_DIR"
	EnvDBPath       = "JOBWATCH_DB_PATH"
	EnvSchedule     = "JOBWATCH_SCHEDULE"
	EnvTimezone     = "JOBWATCH_TIMEZONE"
	EnvHTTPAddr     = "JOBWATCH_HTTP_ADDR"
	EnvConfigFile   = "JOBWATCH_CONFIG"
	EnvMinDelay     = "JOBWATCH_MIN_DELAY"
	EnvMaxDelay     = "JOBWATCH_MAX_DELAY"
	EnvFetchTimeout = "JOBWATCH_FETCH_TIMEOUT"
	EnvBrowser      = "JOBWATCH_BROWSER"
	EnvChromePath   = "JOBWATCH_CHROME_PATH"
	EnvLogLevel     = "LOG_LEVEL"
)

// ApplyEnv overlays non-empty environment values onto cfg. Values that fail
// to parse are returned as problems and leave the field untouched.
func ApplyEnv(cfg *Config, getenv func(string) string) []string {
	var problems []string

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		d, err := parseDuration(v)
		if err != nil {
			problems = append(problems, key+": "+err.Error())
			return
		}
		*dst = d
	}

	str(EnvBotToken, &cfg.Telegram.Token)
	str(EnvChatID, &cfg.Telegram.ChatID)
	str(EnvTelegramAPI, &cfg.Telegram.APIURL)
	str(EnvTimezone, &cfg.Report.Timezone)
	str(EnvDataDir, &cfg.App.DataDir)
	str(EnvDBPath, &cfg.App.DBPath)
	str(EnvSchedule, &cfg.App.Schedule)
	str(EnvHTTPAddr, &cfg.App.HTTPAddr)
	str(EnvLogLevel, &cfg.App.LogLevel)
	str(EnvBrowser, &cfg.Search.Browser)
	str(EnvChromePath, &cfg.Search.ChromePath)
	dur(EnvMinDelay, &cfg.Search.MinDelay)
	dur(EnvMaxDelay, &cfg.Search.MaxDelay)
	dur(EnvFetchTimeout, &cfg.Search.FetchTimeout)

	// SEARCH_URL is taken verbatim: surrounding blanks belong to the first
	// and last entries and are trimmed by the parser.
	if v := getenv(EnvSearchURL); strings.TrimSpace(v) != "" {
		cfg.Search.Config = v
	}
	return problems
}

// parseDuration accepts Go durations ("10s") or bare milliseconds ("5000").
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
