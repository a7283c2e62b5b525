package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/apikit/properties"
	"github.com/kbukum/apikit/resilience"
)

const (
	defaultMaxErrorBody = 64 << 10
	defaultUserAgent    = "apikit"
)

// Config configures a Dispatcher.
type Config struct {
	// Name identifies the dispatcher in logs, metrics and the component registry.
	Name string `yaml:"name" mapstructure:"name"`
	// API is the api id recorded on metrics.
	API string `yaml:"api" mapstructure:"api"`

	// RequestTimeout bounds a whole dispatch including retries and redirects. 0 disables it.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	// MaxRetries is the number of retries of transient failures.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// MaxRedirects is the number of redirects followed before failing.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects"`
	// RetryDelayStart is the first backoff delay.
	RetryDelayStart time.Duration `yaml:"retry_delay_start" mapstructure:"retry_delay_start"`
	// MaxRetryDelay caps the backoff delay.
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" mapstructure:"max_retry_delay"`
	// MaxErrorBody is the number of bytes of an error body kept on the error.
	MaxErrorBody int64 `yaml:"max_error_body" mapstructure:"max_error_body"`
	// MaxConcurrent bounds in-flight dispatches. 0 disables the bound.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// UserAgent is sent when a request carries none.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Transport configures the default transport.
	Transport TransportConfig `yaml:"transport" mapstructure:"transport"`

	// CircuitBreaker configures circuit breaker behavior. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`

	// RateLimiter configures rate limiting. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"-" mapstructure:"-"`
}

// ConfigFromSettings derives the dispatcher configuration from resolved settings.
func ConfigFromSettings(name string, s properties.Settings) Config {
	cfg := Config{
		Name:            name,
		API:             s.API,
		RequestTimeout:  s.RequestTimeout,
		MaxRetries:      s.MaxRetries,
		MaxRedirects:    s.MaxRedirects,
		RetryDelayStart: s.RetryDelayStart,
		MaxRetryDelay:   s.MaxRetryDelay,
		MaxErrorBody:    s.MaxErrorBody,
		MaxConcurrent:   s.MaxConnectionsTotal,
		UserAgent:       s.UserAgent,
		Transport:       TransportConfigFromSettings(s),
	}
	if s.BreakerMaxFailures > 0 {
		cb := resilience.DefaultCircuitBreakerConfig(name)
		cb.MaxFailures = s.BreakerMaxFailures
		if s.BreakerTimeout > 0 {
			cb.Timeout = s.BreakerTimeout
		}
		cfg.CircuitBreaker = &cb
	}
	if s.RateLimit > 0 {
		rl := resilience.DefaultRateLimiterConfig(name)
		rl.Rate = s.RateLimit
		rl.Burst = s.RateLimitBurst
		cfg.RateLimiter = &rl
	}
	return cfg
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "dispatcher"
	}
	if c.MaxErrorBody <= 0 {
		c.MaxErrorBody = defaultMaxErrorBody
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxRetryDelay < c.RetryDelayStart {
		c.MaxRetryDelay = c.RetryDelayStart
	}
	c.Transport.ApplyDefaults()
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch {
	case c.RequestTimeout < 0:
		return fmt.Errorf("httpclient: request timeout must not be negative")
	case c.MaxRetries < 0:
		return fmt.Errorf("httpclient: max retries must not be negative")
	case c.MaxRedirects < 0:
		return fmt.Errorf("httpclient: max redirects must not be negative")
	case c.MaxConcurrent < 0:
		return fmt.Errorf("httpclient: max concurrent must not be negative")
	}
	return c.Transport.Validate()
}

func (c *Config) retryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries:     c.MaxRetries,
		InitialBackoff: c.RetryDelayStart,
		MaxBackoff:     c.MaxRetryDelay,
		BackoffFactor:  2.0,
		Jitter:         0.1,
	}
}
