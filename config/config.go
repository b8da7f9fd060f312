// Package config holds questvars runtime settings loaded from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all settings for a play session.
type Config struct {
	ContentDir string `yaml:"content_dir"`

	// Saves
	SaveDir     string `yaml:"save_dir"`
	SaveBackend string `yaml:"save_backend"` // file or sqlite
	SQLitePath  string `yaml:"sqlite_path"`  // defaults to <save_dir>/saves.db

	// Output
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	Plain    bool   `yaml:"plain"`
	Trace    bool   `yaml:"trace"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		SaveDir:     "saves",
		SaveBackend: BackendFile,
		LogLevel:    "warn",
	}
}

// Load loads config from a YAML file over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.SaveBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown save_backend %q (want %s or %s)", c.SaveBackend, BackendFile, BackendSQLite)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DatabasePath returns the SQLite file used by the sqlite backend.
func (c Config) DatabasePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.SaveDir, "saves.db")
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("unknown log_level %q", s)
	}
	return l, nil
}
