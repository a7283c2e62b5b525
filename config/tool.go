package config

import (
	"fmt"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// ToolConfig is the configuration of the apikit command.
//
// Example:
//
//	catalog: ./catalogs/items.yml
//	provider: acme
//	endpoint: https://api.acme.test
//	properties:
//	  max-retries: "2"
//	logging:
//	  level: debug
type ToolConfig struct {
	Name        string            `yaml:"name" mapstructure:"name"`
	Environment string            `yaml:"environment" mapstructure:"environment"`
	Catalog     string            `yaml:"catalog" mapstructure:"catalog"`
	Provider    string            `yaml:"provider" mapstructure:"provider"`
	Endpoint    string            `yaml:"endpoint" mapstructure:"endpoint"`
	Identity    string            `yaml:"identity" mapstructure:"identity"`
	Credential  string            `yaml:"credential" mapstructure:"credential"`
	Properties  map[string]string `yaml:"properties" mapstructure:"properties"`
	Logging     logger.Config     `yaml:"logging" mapstructure:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to the configuration.
func (c *ToolConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "apikit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults(c.Name, c.Environment)
}

// Validate validates the configuration.
func (c *ToolConfig) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// TelemetryConfig enables OTLP export of dispatch traces and metrics.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`

	serviceName string
	environment string
}

// ApplyDefaults applies default values to telemetry configuration.
func (c *TelemetryConfig) ApplyDefaults(serviceName, environment string) {
	c.serviceName, c.environment = serviceName, environment
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
		c.Insecure = true
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Validate validates telemetry configuration.
func (c *TelemetryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	return nil
}

// Tracer returns the tracer settings.
func (c *TelemetryConfig) Tracer() observability.TracerConfig {
	tc := observability.DefaultTracerConfig(c.serviceName)
	tc.Environment = c.environment
	tc.Endpoint = c.Endpoint
	tc.Insecure = c.Insecure
	tc.SampleRate = c.SampleRate
	return tc
}

// Meter returns the meter settings.
func (c *TelemetryConfig) Meter() observability.MeterConfig {
	mc := observability.DefaultMeterConfig(c.serviceName)
	mc.Environment = c.environment
	mc.Endpoint = c.Endpoint
	mc.Insecure = c.Insecure
	return mc
}
