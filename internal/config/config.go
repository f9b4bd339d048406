package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LocalRoot  string `koanf:"local_root"`  // directory holding the station data tree
	RemoteRoot string `koanf:"remote_root"` // base URL used when the local root fails the probe
	Icons      string `koanf:"icons"`       // "nerd", "unicode", or "none"

	DefaultStation string `koanf:"default_station"` // station path to tune on startup

	Scheduler SchedulerConfig `koanf:"scheduler"`
	Cache     CacheConfig     `koanf:"cache"`
}

// SchedulerConfig tunes segment selection.
type SchedulerConfig struct {
	NoRepeatWindow int `koanf:"no_repeat_window"` // recent draws held out of rotation (default: 3)
}

// CacheConfig holds the metadata cache settings.
type CacheConfig struct {
	Enabled *bool `koanf:"enabled"`  // default: true
	TTLDays int   `koanf:"ttl_days"` // default: 7
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in local_root
	if cfg.LocalRoot != "" {
		cfg.LocalRoot = expandPath(cfg.LocalRoot)
	}

	// Normalize remote_root (remove trailing slash)
	cfg.RemoteRoot = strings.TrimSuffix(cfg.RemoteRoot, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/longwave/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "longwave", "config.toml"))
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

// HasDataRoot returns true if at least one data root is configured.
func (c *Config) HasDataRoot() bool {
	return c.LocalRoot != "" || c.RemoteRoot != ""
}

// GetSchedulerConfig returns the scheduler configuration with defaults applied.
func (c *Config) GetSchedulerConfig() SchedulerConfig {
	cfg := c.Scheduler

	if cfg.NoRepeatWindow <= 0 {
		cfg.NoRepeatWindow = 3
	}

	return cfg
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache

	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = 7
	}

	return cfg
}
