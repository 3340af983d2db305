package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Defaults for the batcher. MaxBatchSize is the hard ceiling the ingestion
// endpoint enforces per request; a caller-configured batch size is capped
// there rather than silently exceeding the contract.
const (
	DefaultBatchSize     = 10
	MaxBatchSize         = 100
	DefaultFlushInterval = 5000 * time.Millisecond
)

// Config holds everything the agent needs at construction time. It can be
// built programmatically (the agent is a library) or loaded from the
// environment via Load.
type Config struct {
	Endpoint string `envconfig:"VITALWATCH_ENDPOINT" required:"true"`
	SiteID   string `envconfig:"VITALWATCH_SITE_ID" required:"true"`
	APIKey   string `envconfig:"VITALWATCH_API_KEY"`

	TrackPageViews bool `envconfig:"VITALWATCH_TRACK_PAGE_VIEWS" default:"true"`
	TrackVitals    bool `envconfig:"VITALWATCH_TRACK_VITALS" default:"true"`
	TrackErrors    bool `envconfig:"VITALWATCH_TRACK_ERRORS" default:"true"`

	RespectDoNotTrack bool `envconfig:"VITALWATCH_RESPECT_DNT" default:"true"`

	// DisableBeacon forces hidden-page flushes onto the async path, for
	// hosts without an unload-safe send primitive.
	DisableBeacon bool `envconfig:"VITALWATCH_DISABLE_BEACON" default:"false"`

	BatchSize       int `envconfig:"VITALWATCH_BATCH_SIZE" default:"10"`
	FlushIntervalMs int `envconfig:"VITALWATCH_FLUSH_INTERVAL_MS" default:"5000"`

	Debug bool `envconfig:"VITALWATCH_DEBUG" default:"false"`

	// Headers are extra headers attached on the async delivery path only;
	// the beacon path cannot carry them.
	Headers map[string]string `envconfig:"VITALWATCH_HEADERS"`
}

// Load reads the agent configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fields without which the agent refuses to start.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if c.SiteID == "" {
		return fmt.Errorf("site ID is required")
	}

	return nil
}

// Normalize fills in defaults and caps the batch size at the per-request
// ceiling the ingestion endpoint accepts.
func (c *Config) Normalize() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchSize > MaxBatchSize {
		c.BatchSize = MaxBatchSize
	}
	if c.FlushIntervalMs <= 0 {
		c.FlushIntervalMs = int(DefaultFlushInterval / time.Millisecond)
	}
}

// FlushInterval returns the flush interval as a duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// SinkConfig configures the local development ingestion sink.
type SinkConfig struct {
	Environment string `envconfig:"DEVSINK_ENVIRONMENT" default:"development"`
	Port        string `envconfig:"DEVSINK_PORT" default:"8787"`
	DBPath      string `envconfig:"DEVSINK_DB_PATH" default:"devsink.db"`
	Debug       bool   `envconfig:"DEVSINK_DEBUG" default:"false"`
}

// LoadSink reads the sink configuration from the environment.
func LoadSink() (*SinkConfig, error) {
	var cfg SinkConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
