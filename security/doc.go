// Package security builds the client TLS configuration of the HTTP
// transport from the trust-all-certs and tls.* properties.
//
//	cfg := security.TLSConfig{CAFile: "/etc/apikit/ca.pem", ServerName: "api.acme.test"}
//	tlsConfig, err := cfg.Build()
//
// Build returns nil when nothing is customised so the transport keeps the
// Go defaults.
package security
