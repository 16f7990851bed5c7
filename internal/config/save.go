package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveAtomic writes cfg as YAML via a temp file, keeping the previous file
// as <path>.bak. The bot token is never written.
func SaveAtomic(path string, cfg Config) error {
	cfg.Telegram.Token = ""
	if _, v := NormalizeAndValidate(cfg); !v.OK() {
		return &ConfigError{Problems: v.Errors}
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
