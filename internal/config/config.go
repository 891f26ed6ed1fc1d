// Package config loads the YAML configuration file that parameterizes
// an hmi-engine process: the Count-Min Sketch dimensions, heavy-hitter
// hysteresis, debug surfaces, and the optional NATS feed and SMTP
// alerting integrations.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure raised by Load, so
// callers can distinguish a bad config from a missing/unreadable file.
var ErrInvalidConfig = errors.New("invalid configuration")

// SketchConfig holds the Count-Min Sketch and heavy-hitter parameters.
type SketchConfig struct {
	K      int     `yaml:"k"`
	Delta  float64 `yaml:"delta"`
	Leeway float64 `yaml:"leeway"`
}

// DebugConfig controls the optional HTTP debug surface.
type DebugConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// FeedConfig points the feed subscriber in hmi-debug-api at a NATS
// deployment (hmi-probe takes its NATS settings from flags instead).
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// SMTPConfig carries the outgoing-mail settings for the alerter.
type SMTPConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// AlertingConfig configures the cache-thrash-storm alerter that polls
// the heavy-hitter set.
type AlertingConfig struct {
	Enabled           bool   `yaml:"enabled"`
	PollInterval      string `yaml:"poll_interval"`
	HitterCountThresh int    `yaml:"hitter_count_threshold"`
}

// SnapshotConfig configures the periodic cache-table dump.
type SnapshotConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
	RootPath string `yaml:"root_path"`
}

// Config is the top-level configuration for an hmi-engine process.
type Config struct {
	Sketch   SketchConfig   `yaml:"sketch"`
	Debug    DebugConfig    `yaml:"debug"`
	Feed     FeedConfig     `yaml:"feed"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Alerting AlertingConfig `yaml:"alerting"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Sketch.K <= 0 {
		return fmt.Errorf("%w: sketch.k must be positive, got %d", ErrInvalidConfig, c.Sketch.K)
	}
	if c.Sketch.Delta <= 0 || c.Sketch.Delta >= 1 {
		return fmt.Errorf("%w: sketch.delta must be in (0,1), got %f", ErrInvalidConfig, c.Sketch.Delta)
	}
	if c.Sketch.Leeway < 0 {
		return fmt.Errorf("%w: sketch.leeway must be non-negative, got %f", ErrInvalidConfig, c.Sketch.Leeway)
	}
	if c.Debug.Enabled && c.Debug.ListenAddr == "" {
		return fmt.Errorf("%w: debug.listen_addr required when debug.enabled", ErrInvalidConfig)
	}
	if c.Feed.Enabled && (c.Feed.URL == "" || c.Feed.Subject == "") {
		return fmt.Errorf("%w: feed.url and feed.subject required when feed.enabled", ErrInvalidConfig)
	}
	if c.SMTP.Enabled && (c.SMTP.Host == "" || c.SMTP.From == "" || len(c.SMTP.To) == 0) {
		return fmt.Errorf("%w: smtp.host, smtp.from and smtp.to required when smtp.enabled", ErrInvalidConfig)
	}
	return nil
}
