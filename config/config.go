// Package config loads the termstatus yaml configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"termstatus/logging"
)

const (
	// Default status line settings
	defaultOutput               = "stderr"
	defaultMaxLabelWidth        = 120
	defaultNotificationDuration = 6 * time.Second
	defaultDrainTimeout         = 5 * time.Second
	defaultCancelTimeout        = 3 * time.Second

	// Default monitoring settings
	defaultMetricsPrefix = "termstatus"
)

// Config represents the complete application configuration
type Config struct {
	Status     StatusConfig     `yaml:"status"`
	Logging    logging.Config   `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// StatusConfig holds status line display settings
type StatusConfig struct {
	// Output is where the status line is drawn: stderr or stdout
	Output string `yaml:"output"`

	// MaxLabelWidth caps work-item labels, middle-ellipsis truncated
	MaxLabelWidth int `yaml:"max_label_width"`

	// NotificationDuration is the default lifetime of a notification
	NotificationDuration time.Duration `yaml:"notification_duration"`

	// DrainTimeout bounds the orderly queue drain during shutdown
	DrainTimeout time.Duration `yaml:"drain_timeout"`

	// CancelTimeout bounds the second shutdown wait, after force-cancellation
	CancelTimeout time.Duration `yaml:"cancel_timeout"`
}

// MonitoringConfig holds metrics push settings
type MonitoringConfig struct {
	// PushURL is a Prometheus remote-write endpoint. Empty disables pushing.
	PushURL string `yaml:"push_url"`

	// MetricsPrefix is prepended to every pushed metric name
	MetricsPrefix string `yaml:"metrics_prefix"`
}

// Load reads the configuration from path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults fills unset fields with default values.
func (c *Config) setDefaults() {
	if c.Status.Output == "" {
		c.Status.Output = defaultOutput
	}
	if c.Status.MaxLabelWidth == 0 {
		c.Status.MaxLabelWidth = defaultMaxLabelWidth
	}
	if c.Status.NotificationDuration == 0 {
		c.Status.NotificationDuration = defaultNotificationDuration
	}
	if c.Status.DrainTimeout == 0 {
		c.Status.DrainTimeout = defaultDrainTimeout
	}
	if c.Status.CancelTimeout == 0 {
		c.Status.CancelTimeout = defaultCancelTimeout
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Status.Output {
	case "stderr", "stdout":
	default:
		return fmt.Errorf("status.output must be stderr or stdout, got %q", c.Status.Output)
	}
	if c.Status.MaxLabelWidth < 0 {
		return fmt.Errorf("status.max_label_width must not be negative, got %d", c.Status.MaxLabelWidth)
	}
	if c.Status.NotificationDuration < 0 {
		return fmt.Errorf("status.notification_duration must not be negative, got %s", c.Status.NotificationDuration)
	}
	if c.Status.DrainTimeout <= 0 {
		return fmt.Errorf("status.drain_timeout must be positive, got %s", c.Status.DrainTimeout)
	}
	if c.Status.CancelTimeout <= 0 {
		return fmt.Errorf("status.cancel_timeout must be positive, got %s", c.Status.CancelTimeout)
	}
	return nil
}

// Writer returns the configured output stream.
func (c *StatusConfig) Writer() *os.File {
	if c.Output == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}
