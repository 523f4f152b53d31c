package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the app configuration.
//
// Precedence: defaults, then the YAML file, then FARMDASH_* environment
// variables, then command-line flags (applied by the caller).
type Config struct {
	API struct {
		Server string `yaml:"server"`
		// Timeout bounds each API call. Zero means no timeout.
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	UI struct {
		SidebarWidth   int           `yaml:"sidebar_width"`
		SearchDebounce time.Duration `yaml:"search_debounce"`
	} `yaml:"ui"`

	// Sync picks optimistic or confirmed updates for status changes.
	Sync struct {
		CropStatus       string `yaml:"crop_status"`
		OrderStatus      string `yaml:"order_status"`
		ClearConcurrency int    `yaml:"clear_concurrency"`
	} `yaml:"sync"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func Default() Config {
	var c Config
	c.UI.SidebarWidth = 28
	c.UI.SearchDebounce = 300 * time.Millisecond
	c.Sync.CropStatus = "optimistic"
	c.Sync.OrderStatus = "optimistic"
	c.Sync.ClearConcurrency = 4
	c.LogLevel = "info"
	return c
}

// Load loads configuration from the given path.
//
// An empty path yields Default() plus environment overrides. A path that
// does not exist is an error.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	c.applyEnv(os.Getenv)
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FARMDASH_SERVER"); v != "" {
		c.API.Server = v
	}
	if v := getenv("FARMDASH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("FARMDASH_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
