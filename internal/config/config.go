package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the nursewire scraper.
type Config struct {
	DBPath            string
	ScrapeInterval    time.Duration // daemon mode: gap between full scrape cycles
	SweepInterval     time.Duration // daemon mode: gap between expiry sweeps
	RequestDelay      time.Duration // mandatory inter-request delay per host
	RequestTimeout    time.Duration
	MaxPages          int
	EmptyPageLimit    int
	ExpiryWindow      time.Duration
	MinDescriptionLen int
	Employers         []EmployerConfig
	Ping              PingConfig
}

// EmployerConfig describes one employer career site to scrape.
type EmployerConfig struct {
	Slug          string `yaml:"slug"`
	Name          string `yaml:"name"`
	CareerPageURL string `yaml:"career_page_url"`
	Enabled       bool   `yaml:"enabled"`
}

// PingConfig controls the optional search-engine notification side channel.
// An empty endpoint disables it without affecting the core.
type PingConfig struct {
	Endpoint       string
	Key            string
	BatchSize      int
	BatchDelay     time.Duration
	TrackingWindow time.Duration
}

// Enabled reports whether the side channel is configured at all.
func (p PingConfig) Enabled() bool { return p.Endpoint != "" }

// EmployerBySlug returns the configured employer with the given slug.
func (c *Config) EmployerBySlug(slug string) (EmployerConfig, bool) {
	for _, e := range c.Employers {
		if e.Slug == slug {
			return e, true
		}
	}
	return EmployerConfig{}, false
}

// rawConfig is used for YAML unmarshaling (snake_case keys, durations as strings).
type rawConfig struct {
	DBPath            string           `yaml:"db_path"`
	ScrapeInterval    string           `yaml:"scrape_interval"`
	SweepInterval     string           `yaml:"sweep_interval"`
	RequestDelay      string           `yaml:"request_delay"`
	RequestTimeout    string           `yaml:"request_timeout"`
	MaxPages          int              `yaml:"max_pages"`
	EmptyPageLimit    int              `yaml:"empty_page_limit"`
	ExpiryWindow      string           `yaml:"expiry_window"`
	MinDescriptionLen int              `yaml:"min_description_len"`
	Employers         []EmployerConfig `yaml:"employers"`
	Ping              rawPingConfig    `yaml:"ping"`
}

type rawPingConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Key            string `yaml:"key"`
	BatchSize      int    `yaml:"batch_size"`
	BatchDelay     string `yaml:"batch_delay"`
	TrackingWindow string `yaml:"tracking_window"`
}

// Load reads and parses the YAML config at path, expands environment
// variables, applies defaults, validates, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		DBPath:            raw.DBPath,
		MaxPages:          raw.MaxPages,
		EmptyPageLimit:    raw.EmptyPageLimit,
		MinDescriptionLen: raw.MinDescriptionLen,
		Employers:         raw.Employers,
		Ping: PingConfig{
			Endpoint:  raw.Ping.Endpoint,
			Key:       raw.Ping.Key,
			BatchSize: raw.Ping.BatchSize,
		},
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "nursewire.db"
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 50
	}
	if cfg.EmptyPageLimit == 0 {
		cfg.EmptyPageLimit = 2
	}
	if cfg.Ping.BatchSize == 0 {
		cfg.Ping.BatchSize = 50
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
		def  time.Duration
	}{
		{"scrape_interval", raw.ScrapeInterval, &cfg.ScrapeInterval, 6 * time.Hour},
		{"sweep_interval", raw.SweepInterval, &cfg.SweepInterval, 24 * time.Hour},
		{"request_delay", raw.RequestDelay, &cfg.RequestDelay, 2500 * time.Millisecond},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout, 30 * time.Second},
		{"expiry_window", raw.ExpiryWindow, &cfg.ExpiryWindow, 60 * 24 * time.Hour},
		{"ping.batch_delay", raw.Ping.BatchDelay, &cfg.Ping.BatchDelay, 2 * time.Second},
		{"ping.tracking_window", raw.Ping.TrackingWindow, &cfg.Ping.TrackingWindow, 24 * time.Hour},
	}
	for _, d := range durations {
		*d.dst = d.def
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	enabled := 0
	for i, e := range cfg.Employers {
		if e.Slug == "" {
			return fmt.Errorf("employers[%d]: slug is required", i)
		}
		if e.Name == "" {
			return fmt.Errorf("employer %s: name is required", e.Slug)
		}
		if e.CareerPageURL == "" {
			return fmt.Errorf("employer %s: career_page_url is required", e.Slug)
		}
		if e.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one employer must be enabled")
	}

	// The delay is a source-site politeness contract, not a tunable.
	if cfg.RequestDelay < 500*time.Millisecond {
		return fmt.Errorf("request_delay must be at least 500ms, got %v", cfg.RequestDelay)
	}
	if cfg.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape_interval must be positive, got %v", cfg.ScrapeInterval)
	}
	if cfg.ExpiryWindow <= 0 {
		return fmt.Errorf("expiry_window must be positive, got %v", cfg.ExpiryWindow)
	}
	if cfg.Ping.Enabled() && cfg.Ping.BatchSize > 50 {
		return fmt.Errorf("ping.batch_size must be at most 50, got %d", cfg.Ping.BatchSize)
	}
	return nil
}
