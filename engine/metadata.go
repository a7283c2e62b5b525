package engine

import (
	"maps"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/properties"
)

// APIMetadata describes an API independently of who hosts it.
type APIMetadata struct {
	ID   string
	Name string
	// Version is the default api-version.
	Version      string
	BuildVersion string
	// DefaultEndpoint is used when neither the provider nor the caller sets one.
	DefaultEndpoint string
	// Anonymous APIs need no identity.
	Anonymous bool
	// CredentialName documents the secret, e.g. "password". Empty means the
	// API needs no credential.
	CredentialName string
	// Defaults is the api layer of the property bag.
	Defaults map[string]string
	Catalog  catalog.Catalog
	// Modules are installed before the caller's modules.
	Modules []Module
}

// ProviderMetadata describes one deployment of an API.
type ProviderMetadata struct {
	ID           string
	Name         string
	API          APIMetadata
	Endpoint     string
	ISO3166Codes []string
	// Defaults is the provider layer of the property bag.
	Defaults map[string]string
}

func (a APIMetadata) defaults() map[string]string {
	out := maps.Clone(a.Defaults)
	if out == nil {
		out = make(map[string]string)
	}
	if a.DefaultEndpoint != "" {
		out[properties.KeyEndpoint] = a.DefaultEndpoint
	}
	if a.Version != "" {
		out[properties.KeyAPIVersion] = a.Version
	}
	if a.BuildVersion != "" {
		out[properties.KeyBuildVersion] = a.BuildVersion
	}
	return out
}

func (p ProviderMetadata) defaults() map[string]string {
	out := maps.Clone(p.Defaults)
	if out == nil {
		out = make(map[string]string)
	}
	if p.Endpoint != "" {
		out[properties.KeyEndpoint] = p.Endpoint
	}
	return out
}
