package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return &ConfigError{Err: err}
		}
	}
	return nil
}

// FromEnvironment assembles the startup config: the YAML file named by
// path (or JOBWATCH_CONFIG), then environment overrides, then
// normalization and validation. Warnings are returned for logging.
func FromEnvironment(path string, getenv func(string) string) (Config, []string, error) {
	if path == "" {
		path = getenv(EnvConfigFile)
	}
	cfg, err := Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if problems := ApplyEnv(&cfg, getenv); len(problems) > 0 {
		return cfg, nil, &ConfigError{Problems: problems}
	}
	cfg, v := NormalizeAndValidate(cfg)
	if !v.OK() {
		return cfg, v.Warnings, &ConfigError{Problems: v.Errors}
	}
	return cfg, v.Warnings, nil
}
