// Package config handles YAML job configuration loading and validation.
package config

import (
	"fmt"
	"time"
)

// Config is the parsed job configuration. The core keys (version, seed,
// metric, target_column) drive the metric pipeline; the remaining sections
// configure optional sinks and act as defaults for assay run flags.
// CLI flags always override config values.
type Config struct {
	Version      string `yaml:"version"`
	Seed         *int64 `yaml:"seed"`
	Metric       string `yaml:"metric"`
	TargetColumn string `yaml:"target_column"`

	// Window is the trailing window size for rolling metrics.
	Window int `yaml:"window"`
	// SampleSize is the draw count for sampled metrics.
	// Zero means "derive from table size".
	SampleSize int `yaml:"sample_size"`

	History HistoryConfig `yaml:"history"`
	Archive ArchiveConfig `yaml:"archive"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// HistoryConfig holds history spool defaults from the config file.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig holds archive storage defaults from the config file.
type ArchiveConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Region  string `yaml:"region"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks structural requirements on the core keys, immediately
// after parse. Metric-name resolution against the supported set happens in
// the metric package; this check only enforces presence and basic ranges.
func (c *Config) Validate() error {
	var missing []string
	if c.Version == "" {
		missing = append(missing, "version")
	}
	if c.Seed == nil {
		missing = append(missing, "seed")
	}
	if c.Metric == "" {
		missing = append(missing, "metric")
	}
	if c.TargetColumn == "" {
		missing = append(missing, "target_column")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config missing required fields: %v", missing)
	}
	// Zero means "unset" for both keys: the metric engine derives sample_size
	// from the table and rejects a missing window at compute time.
	if c.Window < 0 {
		return fmt.Errorf("window must not be negative, got %d", c.Window)
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative, got %d", c.SampleSize)
	}
	return nil
}

// SeedValue returns the configured seed. Call only after Validate.
func (c *Config) SeedValue() int64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}
