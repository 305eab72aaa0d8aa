// Package config assembles the client's runtime settings from three layers:
// built-in defaults, an optional JSON file (-c/-config), and command-line
// flags. Later layers win.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the runtime settings of the client.
type Config struct {
	// BaseURL is the API origin, without a trailing slash.
	BaseURL string
	// RequestTimeout bounds every API request.
	RequestTimeout time.Duration
	// PollInterval is how often the notification badge refreshes.
	PollInterval time.Duration
	// PageLimit is the page size requested from list endpoints.
	PageLimit int
	// DataDir holds the credential database and the sealing key.
	DataDir string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "https://itd.gg"
	c.RequestTimeout = 15 * time.Second
	c.PollInterval = 30 * time.Second
	c.PageLimit = 20
	c.DataDir = defaultDataDir()
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "itd")
	}
	return ".itd"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
