package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Live       LiveConfig       `yaml:"live"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Matching   MatchingConfig   `yaml:"matching"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// UpstreamConfig holds the connection settings for the club platform API.
type UpstreamConfig struct {
	BaseURL             string        `yaml:"base_url"`
	APIKey              string        `yaml:"api_key"`
	TimeoutSeconds      int           `yaml:"timeout_seconds"`
	Timeout             time.Duration `yaml:"-"` // Ignored by YAML parser
	PollIntervalSeconds int           `yaml:"poll_interval_seconds"`
	PollInterval        time.Duration `yaml:"-"`
	BookingWindowDays   int           `yaml:"booking_window_days"`
	Timezone            string        `yaml:"timezone"`
	StaffEmail          string        `yaml:"staff_email"`

	location *time.Location
}

// Location returns the facility timezone resolved during Load. It falls back
// to UTC when the config has not gone through Load.
func (u *UpstreamConfig) Location() *time.Location {
	if u.location == nil {
		return time.UTC
	}
	return u.location
}

// LiveConfig holds the settings for the upstream live-update feed.
type LiveConfig struct {
	Enabled             bool          `yaml:"enabled"`
	URL                 string        `yaml:"url"`
	ReconnectMinSeconds int           `yaml:"reconnect_min_seconds"`
	ReconnectMaxSeconds int           `yaml:"reconnect_max_seconds"`
	ReconnectMin        time.Duration `yaml:"-"`
	ReconnectMax        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the push subscription store location.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// PushConfig holds the VAPID keys for staff web push alerts.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// MatchingConfig carries the unmatched-booking heuristic. The upstream data
// has no single authoritative flag for "this booking belongs to no known
// member", so the placeholder patterns are configuration rather than code.
type MatchingConfig struct {
	PlaceholderEmailPatterns []string `yaml:"placeholder_email_patterns"`
	PlaceholderNameMarkers   []string `yaml:"placeholder_name_markers"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	cfg.Upstream.Timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second

	if cfg.Upstream.PollIntervalSeconds <= 0 {
		cfg.Upstream.PollIntervalSeconds = 300
	}
	cfg.Upstream.PollInterval = time.Duration(cfg.Upstream.PollIntervalSeconds) * time.Second

	if cfg.Upstream.BookingWindowDays <= 0 {
		cfg.Upstream.BookingWindowDays = 30
	}

	if cfg.Upstream.Timezone == "" {
		cfg.Upstream.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Upstream.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Upstream.Timezone, err)
	}
	cfg.Upstream.location = loc

	if cfg.Live.ReconnectMinSeconds <= 0 {
		cfg.Live.ReconnectMinSeconds = 1
	}
	if cfg.Live.ReconnectMaxSeconds <= cfg.Live.ReconnectMinSeconds {
		cfg.Live.ReconnectMaxSeconds = cfg.Live.ReconnectMinSeconds * 60
	}
	cfg.Live.ReconnectMin = time.Duration(cfg.Live.ReconnectMinSeconds) * time.Second
	cfg.Live.ReconnectMax = time.Duration(cfg.Live.ReconnectMaxSeconds) * time.Second

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:commandcenter.db?cache=shared"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if len(cfg.Matching.PlaceholderEmailPatterns) == 0 {
		cfg.Matching.PlaceholderEmailPatterns = []string{"placeholder", "unknown@", "noreply"}
	}
	if len(cfg.Matching.PlaceholderNameMarkers) == 0 {
		cfg.Matching.PlaceholderNameMarkers = []string{"Unknown"}
	}

	return &cfg, nil
}
