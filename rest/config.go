package rest

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/restkit/security"
	"github.com/kbukum/restkit/version"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures an adapter. Both adapters accept the same Config.
type Config struct {
	// Name labels the adapter instance in logs, spans and metrics.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to every request path. Paths that are already
	// absolute URLs are used as-is.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent defaults to "restkit/<version>".
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// ValidateResponses rejects decoded users that miss required fields or
	// carry a malformed email. Off by default.
	ValidateResponses bool `yaml:"validate_responses" mapstructure:"validate_responses"`

	// TLS configures server verification and client certificates.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent("restkit")
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("rest: timeout must be positive")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("rest: base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("rest: base_url must use http or https (got: %q)", c.BaseURL)
		}
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("rest: %w", err)
	}
	return nil
}
