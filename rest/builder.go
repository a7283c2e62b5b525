package rest

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/kbukum/apikit/catalog"
	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/properties"
)

// Builder resolves operations against one endpoint. It is immutable and safe
// for concurrent use.
type Builder struct {
	endpoint *url.URL
	tokens   map[string]string
	props    properties.Bag
	filters  []Filter
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTokens sets the values of the {api-version} and {build-version} tokens.
func WithTokens(apiVersion, buildVersion string) BuilderOption {
	return func(b *Builder) {
		if apiVersion != "" {
			b.tokens[catalog.TokenAPIVersion] = apiVersion
		}
		if buildVersion != "" {
			b.tokens[catalog.TokenBuildVersion] = buildVersion
		}
	}
}

// WithProperties sets the bag used to resolve endpoint_property references.
func WithProperties(bag properties.Bag) BuilderOption {
	return func(b *Builder) { b.props = bag }
}

// WithFilters sets the context-wide filters, applied before operation filters.
func WithFilters(filters ...Filter) BuilderOption {
	return func(b *Builder) { b.filters = append(b.filters, filters...) }
}

// NewBuilder creates a builder for endpoint, which must be an absolute URL.
func NewBuilder(endpoint string, opts ...BuilderOption) (*Builder, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, apperrors.Configuration("invalid endpoint %q", endpoint).WithCause(err)
	}
	b := &Builder{endpoint: u, tokens: make(map[string]string)}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Endpoint returns a copy of the default endpoint.
func (b *Builder) Endpoint() *url.URL {
	u := *b.endpoint
	return &u
}

// Build resolves op with args into a request. binder may be nil when the
// operation has no payload; filters are the operation's own filters. Missing
// or unknown arguments fail with an argument error before any I/O.
func (b *Builder) Build(ctx context.Context, op *catalog.Operation, binder Binder, filters []Filter, args Args) (*httpclient.Request, error) {
	return b.build(ctx, op, binder, filters, args, nil)
}

// BuildPage is Build for the page following marker. The marker is added as
// the query parameter markerParam before the filters run, so signing covers it.
// An empty marker builds the first page.
func (b *Builder) BuildPage(ctx context.Context, op *catalog.Operation, binder Binder, filters []Filter, args Args, markerParam, marker string) (*httpclient.Request, error) {
	var extra url.Values
	if marker != "" {
		extra = url.Values{markerParam: {marker}}
	}
	return b.build(ctx, op, binder, filters, args, extra)
}

func (b *Builder) build(ctx context.Context, op *catalog.Operation, binder Binder, filters []Filter, args Args, extra url.Values) (*httpclient.Request, error) {
	resolved, err := resolveArgs(op, args)
	if err != nil {
		return nil, err
	}

	lookup := func(name string) (string, bool) {
		if v, ok := resolved[name]; ok {
			s, err := scalar(v)
			return s, err == nil
		}
		v, ok := b.tokens[name]
		return v, ok
	}

	endpoint, err := b.resolveEndpoint(op, resolved)
	if err != nil {
		return nil, err
	}
	path, err := op.Template().Expand(lookup)
	if err != nil {
		return nil, apperrors.InvalidArgument(op.Key(), err.Error()).WithCause(err)
	}
	target, err := joinPath(endpoint, path)
	if err != nil {
		return nil, apperrors.InvalidArgument(op.Key(), err.Error()).WithCause(err)
	}

	req, err := httpclient.NewRequest(op.Method(), target.String())
	if err != nil {
		return nil, apperrors.InvalidArgument(op.Key(), err.Error()).WithCause(err)
	}

	req = applyStaticQuery(req, op.Query(), lookup)
	req = applyStaticHeaders(req, op.Headers(), lookup)
	if accept := op.Accept(); accept != "" {
		req = req.WithHeader("Accept", accept)
	}
	if ct := op.ContentType(); ct != "" {
		req = req.WithHeader("Content-Type", ct)
	}

	form := url.Values{}
	payload := make(map[string]any)
	for _, p := range op.Params() {
		v, ok := resolved[p.Name]
		if !ok {
			continue
		}
		switch p.In {
		case catalog.InQuery, catalog.InHeader, catalog.InForm:
			vals, err := values(v)
			if err != nil {
				return nil, apperrors.InvalidArgument(p.Name, err.Error()).WithCause(err)
			}
			if len(vals) == 0 {
				continue
			}
			switch p.In {
			case catalog.InQuery:
				req = req.WithQuery(p.WireName(), vals...)
			case catalog.InHeader:
				for _, hv := range vals {
					req = req.AddHeader(p.WireName(), hv)
				}
			default:
				form[p.WireName()] = append(form[p.WireName()], vals...)
			}
		case catalog.InPayload:
			payload[p.WireName()] = v
		}
	}

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		req = req.WithQuery(key, extra[key]...)
	}

	if len(form) > 0 {
		req = withBody(req, []byte(form.Encode()), "application/x-www-form-urlencoded")
	}
	if binder != nil {
		if req, err = binder.Bind(req, payload); err != nil {
			return nil, err
		}
	}
	if op.VirtualHost() {
		req = req.WithHost(b.endpoint.Host)
	}
	req = req.WithoutHeader("Expect")

	chain := filters
	if !op.OverrideFilters() {
		chain = append(slices.Clone(b.filters), filters...)
	}
	for _, f := range chain {
		next, err := f.Filter(ctx, req)
		if err != nil {
			if apperrors.IsAppError(err) {
				return nil, err
			}
			return nil, apperrors.New(apperrors.ErrCodeInvalidArgument, "request filter failed").WithCause(err)
		}
		req = next
	}
	return req, nil
}

// resolveArgs applies defaults and checks that required arguments are present
// and that no undeclared argument was passed.
func resolveArgs(op *catalog.Operation, args Args) (map[string]any, error) {
	for _, name := range slices.Sorted(maps.Keys(args)) {
		if _, ok := op.Param(name); !ok {
			return nil, apperrors.InvalidArgument(name, "not a parameter of "+op.Key())
		}
	}
	resolved := make(map[string]any)
	for _, p := range op.Params() {
		v, ok := args.present(p.Name)
		if !ok && p.Default != "" {
			v, ok = p.Default, true
		}
		if !ok {
			if p.IsRequired() {
				return nil, apperrors.MissingArgument(p.Name).WithDetail("operation", op.Key())
			}
			continue
		}
		resolved[p.Name] = v
	}
	return resolved, nil
}

func (b *Builder) resolveEndpoint(op *catalog.Operation, resolved map[string]any) (*url.URL, error) {
	endpoint := b.endpoint
	if prop := op.EndpointProperty(); prop != "" {
		if raw, ok := b.props.Get(prop); ok && strings.TrimSpace(raw) != "" {
			u, err := parseEndpoint(raw)
			if err != nil {
				return nil, apperrors.Configuration("property %s is not a valid endpoint", prop).WithCause(err)
			}
			endpoint = u
		}
	}
	for _, p := range op.ParamsIn(catalog.InEndpoint) {
		v, ok := resolved[p.Name]
		if !ok {
			continue
		}
		raw, err := scalar(v)
		if err == nil {
			endpoint, err = parseEndpoint(raw)
		}
		if err != nil {
			return nil, apperrors.InvalidArgument(p.Name, "not an absolute url").WithCause(err)
		}
	}
	return endpoint, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errRelativeEndpoint}
	}
	return u, nil
}

// joinPath appends an escaped path to the endpoint path.
func joinPath(endpoint *url.URL, escaped string) (*url.URL, error) {
	u := *endpoint
	raw := strings.TrimSuffix(endpoint.EscapedPath(), "/") + escaped
	path, err := url.PathUnescape(raw)
	if err != nil {
		return nil, err
	}
	u.Path = path
	u.RawPath = raw
	return &u, nil
}

func applyStaticQuery(req *httpclient.Request, query map[string][]string, lookup func(string) (string, bool)) *httpclient.Request {
	for _, key := range slices.Sorted(maps.Keys(query)) {
		vals := query[key]
		if len(vals) == 0 {
			req = req.WithQuery(catalog.ReplaceTokens(key, lookup))
			continue
		}
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = catalog.ReplaceTokens(v, lookup)
		}
		req = req.WithQuery(key, out...)
	}
	return req
}

func applyStaticHeaders(req *httpclient.Request, headers map[string][]string, lookup func(string) (string, bool)) *httpclient.Request {
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		for _, v := range headers[name] {
			req = req.AddHeader(name, catalog.ReplaceTokens(v, lookup))
		}
	}
	return req
}
