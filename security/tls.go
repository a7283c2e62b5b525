package security

import (
	"cmp"
	"crypto/tls"
	"crypto/x509"
	"os"

	apperrors "github.com/kbukum/apikit/errors"
)

// TLSConfig is the client side TLS of a context transport. The zero value
// keeps the Go defaults.
type TLSConfig struct {
	// SkipVerify accepts any server certificate (trust-all-certs).
	SkipVerify bool
	// CAFile replaces the system roots with the PEM certificates it holds (tls.ca-file).
	CAFile string
	// CertFile and KeyFile hold the client certificate (tls.cert-file, tls.key-file).
	CertFile string
	KeyFile  string
	// ServerName is the name verified against the server certificate (tls.server-name).
	ServerName string
	// MinVersion defaults to TLS 1.2.
	MinVersion uint16
}

// IsEnabled reports whether any setting departs from the defaults.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.KeyFile != "" || c.ServerName != ""
}

// Validate checks that the client certificate is complete.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return apperrors.Configuration("tls.cert-file and tls.key-file must be set together")
	}
	return nil
}

// Build returns the tls.Config for the transport, or nil when TLS is not
// customised. Unreadable files are configuration errors.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in through trust-all-certs
		ServerName:         c.ServerName,
		MinVersion:         cmp.Or(c.MinVersion, tls.VersionTLS12),
	}
	if c.CAFile != "" {
		pool, err := certPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, apperrors.Configuration("load client certificate %s", c.CertFile).WithCause(err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

func certPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Configuration("read tls.ca-file %s", path).WithCause(err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, apperrors.Configuration("tls.ca-file %s holds no PEM certificate", path)
	}
	return pool, nil
}
