package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Database       string   `koanf:"database"`        // SQLite file, empty means the XDG data dir
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music library

	Log           LogConfig           `koanf:"log"`
	Queue         QueueConfig         `koanf:"queue"`
	Notifications NotificationsConfig `koanf:"notifications"`
	MPRIS         MPRISConfig         `koanf:"mpris"`
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error (default: warn)
	Format string `koanf:"format"` // "console" or "json" (default: console)
}

// QueueConfig tunes the queue manager.
type QueueConfig struct {
	HistorySize    int `koanf:"history_size"`     // undo steps kept (default: 50)
	SaveDebounceMs int `koanf:"save_debounce_ms"` // delay before persisting (default: 0)
	SlowObserverMs int `koanf:"slow_observer_ms"` // observer warning threshold (default: 50)
}

// NotificationsConfig controls desktop notifications on track change.
type NotificationsConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// MPRISConfig controls the media key bridge.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

const (
	defaultHistorySize    = 50
	defaultSlowObserverMs = 50
	maxHistorySize        = 1000
)

// Load reads the default config files, in order of priority (last wins).
// Missing files are skipped.
func Load() (*Config, error) {
	var existing []string
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	return LoadFrom(existing...)
}

// LoadFrom reads the given config files in order (last wins). Every file
// must exist.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Database != "" {
		cfg.Database = expandPath(cfg.Database)
	}
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/cadence/config.toml
	if xdg.ConfigHome != "" {
		paths = append(paths, filepath.Join(xdg.ConfigHome, "cadence", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetQueueConfig returns the queue configuration with defaults applied.
func (c *Config) GetQueueConfig() QueueConfig {
	cfg := c.Queue

	if cfg.HistorySize <= 0 || cfg.HistorySize > maxHistorySize {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.SaveDebounceMs < 0 {
		cfg.SaveDebounceMs = 0
	}
	if cfg.SlowObserverMs <= 0 {
		cfg.SlowObserverMs = defaultSlowObserverMs
	}

	return cfg
}

// SaveDebounce returns the persistence debounce as a duration.
func (q QueueConfig) SaveDebounce() time.Duration {
	return time.Duration(q.SaveDebounceMs) * time.Millisecond
}

// SlowObserver returns the slow observer threshold as a duration.
func (q QueueConfig) SlowObserver() time.Duration {
	return time.Duration(q.SlowObserverMs) * time.Millisecond
}

// NotificationsEnabled reports whether track change notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// MPRISEnabled reports whether the media key bridge is on.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}
