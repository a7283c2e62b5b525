package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cristalhq/hedgedhttp"
	"golang.org/x/net/http2"

	"github.com/kbukum/apikit/properties"
	"github.com/kbukum/apikit/security"
)

// TransportConfig configures the connection pool shared by all dispatches of a context.
type TransportConfig struct {
	// ConnectionTimeout bounds dialing and the TLS handshake. 0 keeps the Go defaults.
	ConnectionTimeout time.Duration `yaml:"connection_timeout" mapstructure:"connection_timeout"`
	// MaxConnsPerHost limits connections per host. 0 means unlimited.
	MaxConnsPerHost int `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host"`
	// MaxIdleConns limits idle connections across all hosts.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	// IdleConnTimeout closes idle connections after this period.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout"`
	// TLS configures certificate verification and client certificates.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// HedgeAfter sends a second copy of an idempotent request when the first
	// has not answered within this delay. 0 disables hedging.
	HedgeAfter time.Duration `yaml:"hedge_after" mapstructure:"hedge_after"`
	// HedgeUpTo is the maximum number of copies of a hedged request.
	HedgeUpTo int `yaml:"hedge_up_to" mapstructure:"hedge_up_to"`
}

// TransportConfigFromSettings derives the transport configuration from resolved settings.
func TransportConfigFromSettings(s properties.Settings) TransportConfig {
	cfg := TransportConfig{
		ConnectionTimeout: s.ConnectionTimeout,
		MaxConnsPerHost:   s.MaxConnectionsPerHost,
		MaxIdleConns:      s.MaxConnectionsTotal,
		HedgeAfter:        s.HedgeAfter,
		HedgeUpTo:         s.HedgeUpTo,
	}
	tlsCfg := &security.TLSConfig{
		SkipVerify: s.TrustAllCerts,
		CAFile:     s.CAFile,
		CertFile:   s.CertFile,
		KeyFile:    s.KeyFile,
		ServerName: s.ServerName,
	}
	if tlsCfg.IsEnabled() {
		cfg.TLS = tlsCfg
	}
	return cfg
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *TransportConfig) ApplyDefaults() {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 100
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	if c.HedgeUpTo <= 0 {
		c.HedgeUpTo = 2
	}
}

// Validate checks that the configuration is valid.
func (c *TransportConfig) Validate() error {
	if c.ConnectionTimeout < 0 {
		return fmt.Errorf("httpclient: connection timeout must not be negative")
	}
	if c.MaxConnsPerHost < 0 {
		return fmt.Errorf("httpclient: max conns per host must not be negative")
	}
	if c.HedgeAfter < 0 {
		return fmt.Errorf("httpclient: hedge delay must not be negative")
	}
	return c.TLS.Validate()
}

// Transport is the round tripper used by a Dispatcher.
type Transport struct {
	base   *http.Transport
	hedged http.RoundTripper
	stats  *hedgedhttp.Stats
}

var _ http.RoundTripper = (*Transport)(nil)

// NewTransport builds a pooled HTTP/1.1 and HTTP/2 transport from cfg.
func NewTransport(cfg TransportConfig) (*Transport, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConns = cfg.MaxIdleConns
	base.MaxConnsPerHost = cfg.MaxConnsPerHost
	if cfg.MaxConnsPerHost > 0 {
		base.MaxIdleConnsPerHost = cfg.MaxConnsPerHost
	}
	base.IdleConnTimeout = cfg.IdleConnTimeout
	if cfg.ConnectionTimeout > 0 {
		base.DialContext = (&net.Dialer{
			Timeout:   cfg.ConnectionTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		base.TLSHandshakeTimeout = cfg.ConnectionTimeout
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		base.TLSClientConfig = tlsCfg
	}
	if _, err := http2.ConfigureTransports(base); err != nil {
		return nil, fmt.Errorf("httpclient: configure http2: %w", err)
	}

	t := &Transport{base: base}
	if cfg.HedgeAfter > 0 && cfg.HedgeUpTo > 1 {
		t.hedged, t.stats, err = hedgedhttp.NewRoundTripperAndStats(cfg.HedgeAfter, cfg.HedgeUpTo, base)
		if err != nil {
			return nil, fmt.Errorf("httpclient: configure hedging: %w", err)
		}
	}
	return t, nil
}

// RoundTrip implements http.RoundTripper. Only idempotent requests without a
// body are hedged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.hedged != nil && hedgeable(req) {
		return t.hedged.RoundTrip(req)
	}
	return t.base.RoundTrip(req)
}

// HedgeStats returns the hedging counters, nil when hedging is disabled.
func (t *Transport) HedgeStats() *hedgedhttp.Stats { return t.stats }

// CloseIdleConnections closes pooled connections that are not in use.
func (t *Transport) CloseIdleConnections() { t.base.CloseIdleConnections() }

func hedgeable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return req.Body == nil || req.Body == http.NoBody
	default:
		return false
	}
}
