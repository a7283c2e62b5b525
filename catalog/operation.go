package catalog

import (
	"maps"
	"slices"
)

// DefaultMarkerParam is the query parameter used for paging markers when a
// paging spec does not name one.
const DefaultMarkerParam = "marker"

// Operation is a validated, immutable operation descriptor. Accessors return copies.
type Operation struct {
	spec     OperationSpec
	template Template
	params   map[string]Param
}

func (o *Operation) Key() string         { return o.spec.Key }
func (o *Operation) Method() string      { return o.spec.Method }
func (o *Operation) Template() Template  { return o.template }
func (o *Operation) Accept() string      { return o.spec.Accept }
func (o *Operation) ContentType() string { return o.spec.ContentType }
func (o *Operation) VirtualHost() bool   { return o.spec.VirtualHost }
func (o *Operation) Binder() string      { return o.spec.Binder }
func (o *Operation) Parser() string      { return o.spec.Parser }
func (o *Operation) Fallback() string    { return o.spec.Fallback }

// EndpointProperty names the property overriding the endpoint, if any.
func (o *Operation) EndpointProperty() string { return o.spec.EndpointProperty }

// OverrideFilters reports whether context-wide filters are skipped.
func (o *Operation) OverrideFilters() bool { return o.spec.OverrideFilters }

// Params returns the declared parameters in declaration order.
func (o *Operation) Params() []Param { return slices.Clone(o.spec.Params) }

// Param returns the parameter declared under name.
func (o *Operation) Param(name string) (Param, bool) {
	p, ok := o.params[name]
	return p, ok
}

// ParamsIn returns the parameters placed at loc, in declaration order.
func (o *Operation) ParamsIn(loc Location) []Param {
	var out []Param
	for _, p := range o.spec.Params {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// Headers returns a copy of the static headers.
func (o *Operation) Headers() map[string][]string { return cloneMulti(o.spec.Headers) }

// Query returns a copy of the static query parameters.
func (o *Operation) Query() map[string][]string { return cloneMulti(o.spec.Query) }

// Filters returns the operation's filter names.
func (o *Operation) Filters() []string { return slices.Clone(o.spec.Filters) }

// Paging returns the paging spec of a listing operation.
func (o *Operation) Paging() (PagingSpec, bool) {
	if o.spec.Paging == nil {
		return PagingSpec{}, false
	}
	p := *o.spec.Paging
	if p.MarkerParam == "" {
		p.MarkerParam = DefaultMarkerParam
	}
	return p, true
}

// Spec returns a copy of the declarative spec the operation was built from.
func (o *Operation) Spec() OperationSpec { return o.spec.clone() }

// Table maps operation keys to validated operations. It is read-only after NewTable.
type Table struct {
	api string
	ops map[string]*Operation
}

// NewTable validates every spec against refs and builds the table.
// All problems are reported together as one configuration error.
func NewTable(c Catalog, refs References) (*Table, error) {
	if err := Validate(c, refs); err != nil {
		return nil, err
	}
	t := &Table{api: c.API, ops: make(map[string]*Operation, len(c.Operations))}
	for _, spec := range c.Operations {
		op, err := newOperation(spec)
		if err != nil {
			return nil, err
		}
		t.ops[op.Key()] = op
	}
	return t, nil
}

func newOperation(spec OperationSpec) (*Operation, error) {
	spec = spec.clone()
	tmpl, err := ParseTemplate(spec.Path)
	if err != nil {
		return nil, err
	}
	params := make(map[string]Param, len(spec.Params))
	for _, p := range spec.Params {
		params[p.Name] = p
	}
	return &Operation{spec: spec, template: tmpl, params: params}, nil
}

// API returns the api id the table was built for.
func (t *Table) API() string { return t.api }

// Lookup returns the operation registered under key.
func (t *Table) Lookup(key string) (*Operation, bool) {
	op, ok := t.ops[key]
	return op, ok
}

// Keys returns the operation keys in sorted order.
func (t *Table) Keys() []string { return slices.Sorted(maps.Keys(t.ops)) }

// Len returns the number of operations.
func (t *Table) Len() int { return len(t.ops) }
