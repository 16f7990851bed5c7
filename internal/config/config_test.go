package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultSearchURL, cfg.Search.Config)
	assert.Equal(t, 5*time.Second, cfg.Search.MinDelay)
	assert.Equal(t, 15*time.Second, cfg.Search.MaxDelay)
	assert.Equal(t, 60*time.Second, cfg.Search.FetchTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Report.Timezone)
	assert.Equal(t, filepath.Join("data", "seen_jobs.db"), cfg.DatabasePath())
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  chat_id: "-100200"
search:
  config: "https://www.naukri.com/go-jobs|Pune"
  max_delay: 20s
report:
  title: Go Job Alert
app:
  db_path: /tmp/x.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "-100200", cfg.Telegram.ChatID)
	assert.Equal(t, "https://www.naukri.com/go-jobs|Pune", cfg.Search.Config)
	assert.Equal(t, 5*time.Second, cfg.Search.MinDelay, "untouched keys keep defaults")
	assert.Equal(t, 20*time.Second, cfg.Search.MaxDelay)
	assert.Equal(t, "Go Job Alert", cfg.Report.Title)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.True(t, IsConfigError(err))

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("search: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.True(t, IsConfigError(err))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	problems := ApplyEnv(&cfg, envMap(map[string]string{
		EnvBotToken:  " tok ",
		EnvChatID:    "42",
		EnvSearchURL: " https://a|A , https://b ",
		EnvMinDelay:  "1000",
		EnvMaxDelay:  "3s",
		EnvTimezone:  "UTC",
		EnvLogLevel:  "debug",
	}))
	assert.Empty(t, problems)
	assert.Equal(t, "tok", cfg.Telegram.Token)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, " https://a|A , https://b ", cfg.Search.Config)
	assert.Equal(t, time.Second, cfg.Search.MinDelay)
	assert.Equal(t, 3*time.Second, cfg.Search.MaxDelay)
	assert.Equal(t, "UTC", cfg.Report.Timezone)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestApplyEnv_BadDuration(t *testing.T) {
	cfg := Default()
	problems := ApplyEnv(&cfg, envMap(map[string]string{EnvMaxDelay: "soon"}))
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], EnvMaxDelay)
	assert.Equal(t, 15*time.Second, cfg.Search.MaxDelay)
}

func TestFromEnvironment(t *testing.T) {
	cfg, warnings, err := FromEnvironment("", envMap(map[string]string{
		EnvBotToken: "tok",
		EnvChatID:   "42",
	}))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NoError(t, Validate(cfg))
}

func TestFromEnvironment_MissingChatID(t *testing.T) {
	_, _, err := FromEnvironment("", envMap(nil))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "TELEGRAM_CHAT_ID")
}

func TestFromEnvironment_ConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  chat_id: \"7\"\n"), 0o644))

	cfg, _, err := FromEnvironment("", envMap(map[string]string{EnvConfigFile: path}))
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.Telegram.ChatID)
}

func TestValidate_RequiresToken(t *testing.T) {
	cfg := Default()
	cfg.Telegram.ChatID = "1"
	err := Validate(cfg)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Problems, 1)
	assert.Contains(t, ce.Problems[0], "TELEGRAM_BOT_TOKEN")

	cfg.Telegram.Token = "tok"
	assert.NoError(t, Validate(cfg))
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Telegram.ChatID = " 1 "
	cfg.Report.Title = "  "
	cfg.Search.Config = " "
	cfg.Search.MinDelay = 100 * time.Millisecond
	cfg.Search.MaxDelay = 200 * time.Millisecond

	out, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), v.Errors)
	assert.Equal(t, "1", out.Telegram.ChatID)
	assert.Equal(t, DefaultTitle, out.Report.Title)
	assert.Len(t, v.Warnings, 2)
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	cfg := Default()
	cfg.Telegram.ChatID = "1"
	cfg.Search.MinDelay = 20 * time.Second
	cfg.Report.Timezone = "Mars/Olympus"
	cfg.App.Schedule = "every day"
	cfg.Search.FetchTimeout = 0

	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
	assert.Len(t, v.Errors, 4)
}

func TestNormalizeAndValidate_ZeroPacingRejected(t *testing.T) {
	cfg := Default()
	cfg.Telegram.ChatID = "1"
	problems := ApplyEnv(&cfg, envMap(map[string]string{EnvMinDelay: "0", EnvMaxDelay: "0"}))
	require.Empty(t, problems)

	_, v := NormalizeAndValidate(cfg)
	require.Len(t, v.Errors, 1)
	assert.Contains(t, v.Errors[0], "search.max_delay")
}

func TestSaveAtomic_DropsTokenAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := Default()
	cfg.Telegram.Token = "secret"
	cfg.Telegram.ChatID = "99"
	cfg.Search.MaxDelay = 30 * time.Second

	require.NoError(t, SaveAtomic(path, cfg))
	require.NoError(t, SaveAtomic(path, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.FileExists(t, path+".bak")

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "99", back.Telegram.ChatID)
	assert.Equal(t, 30*time.Second, back.Search.MaxDelay)
	assert.Empty(t, back.Telegram.Token)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JOBWATCH_TEST_DOTENV=from-file\n"), 0o644))
	t.Setenv("JOBWATCH_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("JOBWATCH_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("JOBWATCH_TEST_DOTENV"))
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}
