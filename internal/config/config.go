/*
config package centralizes the application-level defaults (paths,
crawl politeness settings, search knobs) and supports overriding them
from a YAML file.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Search defaults.
const (
	// DefaultTopK is the number of results retrieved per query.
	DefaultTopK = 50
)

// Config is the application configuration.
type Config struct {
	Seed              string  `yaml:"seed"`
	DataDir           string  `yaml:"data_dir"`
	MaxPages          int     `yaml:"max_pages"`
	DelaySeconds      float64 `yaml:"delay_seconds"`
	UserAgent         string  `yaml:"user_agent"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryBackoffBase  float64 `yaml:"retry_backoff_base"`
	CrawlIntervalDays int     `yaml:"crawl_interval_days"`
	TopK              int     `yaml:"top_k"`
	DisableStemming   bool    `yaml:"disable_stemming"`
}

// Default returns the documented default configuration: delay 1.2s,
// max pages 300, max retries 3, backoff base 2.0, weekly crawls.
func Default() Config {
	return Config{
		DataDir:           "data",
		MaxPages:          300,
		DelaySeconds:      1.2,
		MaxRetries:        3,
		RetryBackoffBase:  2.0,
		CrawlIntervalDays: 7,
		TopK:              DefaultTopK,
	}
}

// Load returns the default configuration overlaid with the YAML file
// at path. An empty path yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// RecordsPath is the publication record store location.
func (c Config) RecordsPath() string {
	return filepath.Join(c.DataDir, "publications.jsonl")
}

// IndexPath is the index payload location.
func (c Config) IndexPath() string {
	return filepath.Join(c.DataDir, "index.json")
}

// StatusPath is the scheduler's crawl-status file location.
func (c Config) StatusPath() string {
	return filepath.Join(c.DataDir, "crawl_status.json")
}

// Delay is the pacing interval between crawler requests.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// CrawlInterval is the duration between scheduled crawl passes.
func (c Config) CrawlInterval() time.Duration {
	return time.Duration(c.CrawlIntervalDays) * 24 * time.Hour
}
