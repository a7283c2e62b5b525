package rest

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/spf13/cast"
)

// Args are call-time arguments keyed by parameter name. A nil value, or a nil
// pointer, counts as absent.
type Args map[string]any

// With returns a copy of a with name set to value.
func (a Args) With(name string, value any) Args {
	out := make(Args, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[name] = value
	return out
}

// present returns the dereferenced value of name, or false when absent.
func (a Args) present(name string) (any, bool) {
	v, ok := a[name]
	if !ok || isNil(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// scalar formats a single argument value.
func scalar(v any) (string, error) {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return cast.ToStringE(v)
}

// values formats an argument that may be a slice into wire values.
func values(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), nil
	case string:
		return []string{t}, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]string, 0, rv.Len())
		for i := range rv.Len() {
			s, err := scalar(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	s, err := scalar(v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

var errRelativeEndpoint = errors.New("endpoint must be an absolute url")
