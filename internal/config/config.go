// Package config defines the service configuration and loads it from a
// config.yml file, a .env file, and the process environment.
package config

import (
	"fmt"

	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/pipeline"
	"github.com/aquastream/transcriptd/internal/queue"
	"github.com/aquastream/transcriptd/internal/server"
	"github.com/aquastream/transcriptd/internal/transcription/whisper"
	"github.com/aquastream/transcriptd/internal/webhook"
	"github.com/aquastream/transcriptd/internal/worker"
	"github.com/aquastream/transcriptd/internal/ytdlp"
)

// ServiceName is the canonical service identifier used for logging,
// tracing resources, and config file discovery.
const ServiceName = "transcriptd"

// Config is the root service configuration.
type Config struct {
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig  `yaml:"observability" mapstructure:"observability"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Redis         queue.RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Queue         queue.Config         `yaml:"queue" mapstructure:"queue"`
	Worker        worker.Config        `yaml:"worker" mapstructure:"worker"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	YtDlp         ytdlp.Config         `yaml:"ytdlp" mapstructure:"ytdlp"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	Webhook       webhook.Config       `yaml:"webhook" mapstructure:"webhook"`
}

// AuthConfig holds the shared-secret API key for the submission endpoint.
type AuthConfig struct {
	// APIKey is compared against Authorization: Bearer or X-API-Key headers.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// ObservabilityConfig configures the OpenTelemetry exporters.
type ObservabilityConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults applies defaults to all config sections.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Queue.ApplyDefaults()
	c.Worker.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.YtDlp.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Webhook.ApplyDefaults()
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
		c.Observability.Insecure = true
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate validates all config sections.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Worker.Validate(); err != nil {
		return err
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required (set AUTH_API_KEY)")
	}
	return nil
}
