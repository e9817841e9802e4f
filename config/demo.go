package config

import (
	"fmt"
	"time"

	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/version"
)

// Transport names accepted in DemoConfig.Transport.
const (
	TransportFetch = "fetch"
	TransportResty = "resty"
)

// DemoConfig is the configuration of cmd/restdemo.
type DemoConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Transport selects the adapter: fetch or resty.
	Transport   string        `yaml:"transport" mapstructure:"transport"`
	Client      rest.Config   `yaml:"client" mapstructure:"client"`
	Credentials Credentials   `yaml:"credentials" mapstructure:"credentials"`
	Tracing     TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// Credentials are sent to /login.
type Credentials struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// TracingConfig controls the OTLP trace and metric exporters.
type TracingConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *DemoConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "restdemo"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Transport == "" {
		c.Transport = TransportFetch
	}
	c.Client.ApplyDefaults()

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			c.Tracing.Endpoint = observability.DefaultEndpoint
		}
		if c.Tracing.SampleRate == 0 {
			c.Tracing.SampleRate = observability.DefaultSampleRate
		}
		if c.Tracing.MetricInterval == 0 {
			c.Tracing.MetricInterval = observability.DefaultMetricInterval
		}
	}
}

// Validate checks the whole demo configuration.
func (c *DemoConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Transport != TransportFetch && c.Transport != TransportResty {
		return fmt.Errorf("config.transport must be one of [%s, %s] (got: %s)", TransportFetch, TransportResty, c.Transport)
	}
	if c.Client.BaseURL == "" {
		return fmt.Errorf("config.client.base_url is required")
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("config.client: %w", err)
	}
	if c.Credentials.Username == "" {
		return fmt.Errorf("config.credentials.username is required")
	}
	if c.Tracing.Enabled && (c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1) {
		return fmt.Errorf("config.tracing.sample_rate must be between 0 and 1 (got: %v)", c.Tracing.SampleRate)
	}
	return nil
}

// TelemetryConfig converts the tracing section for observability.Init.
func (c *DemoConfig) TelemetryConfig() observability.Config {
	return observability.Config{
		ServiceName:    c.Name,
		ServiceVersion: version.Get().Short(),
		Environment:    c.Environment,
		Endpoint:       c.Tracing.Endpoint,
		Insecure:       c.Tracing.Insecure,
		SampleRate:     c.Tracing.SampleRate,
		MetricInterval: c.Tracing.MetricInterval,
	}
}
