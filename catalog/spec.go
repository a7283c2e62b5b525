package catalog

import (
	"maps"
	"slices"
)

// Location says where a call argument ends up in the request.
type Location string

const (
	InPath     Location = "path"
	InQuery    Location = "query"
	InHeader   Location = "header"
	InForm     Location = "form"
	InPayload  Location = "payload"
	InEndpoint Location = "endpoint"
)

// Built-in tokens usable in templates, headers and query values without a
// declared parameter.
const (
	TokenAPIVersion   = "api-version"
	TokenBuildVersion = "build-version"
)

// Param declares one call argument.
type Param struct {
	// Name is the argument name used at the call site.
	Name string `yaml:"name" validate:"required"`
	// In is where the argument is placed.
	In Location `yaml:"in" validate:"required,oneof=path query header form payload endpoint"`
	// Key is the wire name (query key, header name, form field, payload path).
	// Defaults to Name.
	Key string `yaml:"key,omitempty"`
	// Required arguments must be supplied and non-nil. Path arguments are always required.
	Required bool `yaml:"required,omitempty"`
	// Default is used when an optional argument is absent.
	Default string `yaml:"default,omitempty"`
}

// WireName returns Key, or Name when Key is empty.
func (p Param) WireName() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

// IsRequired reports whether the argument must be supplied.
func (p Param) IsRequired() bool {
	return p.Required || p.In == InPath
}

// PagingSpec describes how a listing operation continues.
type PagingSpec struct {
	// MarkerParam is the query parameter carrying the continuation marker. Defaults to "marker".
	MarkerParam string `yaml:"marker_param,omitempty"`
	// Parser names the page parser producing items and the next marker.
	Parser string `yaml:"parser" validate:"required"`
	// Items is the path of the item array in the response body. Empty means
	// the whole body.
	Items string `yaml:"items,omitempty"`
	// Marker is the path of the next-page marker in the response body.
	Marker string `yaml:"marker,omitempty"`
}

// OperationSpec is the declarative description of one operation.
type OperationSpec struct {
	Key    string  `yaml:"key" validate:"required"`
	Method string  `yaml:"method" validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	Path   string  `yaml:"path" validate:"required"`
	Params []Param `yaml:"params,omitempty" validate:"dive"`

	// Headers are static headers; values may contain {tokens}.
	Headers map[string][]string `yaml:"headers,omitempty"`
	// Query holds static query parameters. An entry with no values emits the bare key.
	Query map[string][]string `yaml:"query,omitempty"`

	Accept      string `yaml:"accept,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`
	// VirtualHost sets the Host header to the endpoint host.
	VirtualHost bool `yaml:"virtual_host,omitempty"`
	// EndpointProperty names a property whose value replaces the context endpoint.
	EndpointProperty string `yaml:"endpoint_property,omitempty"`

	Binder   string `yaml:"binder,omitempty"`
	Parser   string `yaml:"parser,omitempty"`
	Fallback string `yaml:"fallback,omitempty"`

	Filters []string `yaml:"filters,omitempty"`
	// OverrideFilters drops the context-wide filters for this operation.
	OverrideFilters bool `yaml:"override_filters,omitempty"`

	Paging *PagingSpec `yaml:"paging,omitempty"`
}

// Catalog is the full declarative table of an API.
type Catalog struct {
	API        string          `yaml:"api"`
	Version    string          `yaml:"version,omitempty"`
	Operations []OperationSpec `yaml:"operations"`
}

// clone deep-copies the spec so a built Operation never shares mutable state with its input.
func (s OperationSpec) clone() OperationSpec {
	out := s
	out.Params = slices.Clone(s.Params)
	out.Headers = cloneMulti(s.Headers)
	out.Query = cloneMulti(s.Query)
	out.Filters = slices.Clone(s.Filters)
	if s.Paging != nil {
		p := *s.Paging
		out.Paging = &p
	}
	return out
}

func cloneMulti(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range maps.All(m) {
		out[k] = slices.Clone(v)
	}
	return out
}
