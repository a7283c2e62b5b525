// Package parser turns successful responses into values.
//
// A parser consumes the response body once. Releasing the response stays
// with the caller, so a parser never closes it.
package parser

import (
	"bytes"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
)

// Names of the parsers registered by default.
const (
	NameJSON      = "json"
	NameString    = "string"
	NameBytes     = "bytes"
	NameVoid      = "void"
	NameTrueIf2xx = "true-if-2xx"
)

// Parser converts a response into T.
type Parser[T any] interface {
	Parse(resp *httpclient.Response) (T, error)
}

// Func adapts a function to Parser.
type Func[T any] func(resp *httpclient.Response) (T, error)

// Parse calls f.
func (f Func[T]) Parse(resp *httpclient.Response) (T, error) { return f(resp) }

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Erase hides the result type so parsers of different types share a registry.
func Erase[T any](p Parser[T]) Parser[any] {
	return Func[any](func(resp *httpclient.Response) (any, error) {
		return p.Parse(resp)
	})
}

// JSON decodes the body into T. An empty body yields the zero value.
func JSON[T any]() Parser[T] {
	return Func[T](func(resp *httpclient.Response) (T, error) {
		var out T
		body, err := readBody(resp)
		if err != nil || len(body) == 0 {
			return out, err
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return out, parseError(resp, err)
		}
		return out, nil
	})
}

// JSONPath decodes the value at a gjson path into T. A missing path yields
// the zero value.
func JSONPath[T any](path string) Parser[T] {
	return Func[T](func(resp *httpclient.Response) (T, error) {
		var out T
		body, err := readBody(resp)
		if err != nil || len(body) == 0 {
			return out, err
		}
		if !gjson.ValidBytes(body) {
			return out, parseError(resp, errInvalidJSON)
		}
		res := gjson.GetBytes(body, path)
		if !res.Exists() {
			return out, nil
		}
		if err := json.UnmarshalFromString(res.Raw, &out); err != nil {
			return out, parseError(resp, err)
		}
		return out, nil
	})
}

// String returns the body as text.
func String() Parser[string] {
	return Func[string](func(resp *httpclient.Response) (string, error) {
		body, err := readRaw(resp)
		return string(body), err
	})
}

// Bytes returns the raw body.
func Bytes() Parser[[]byte] {
	return Func[[]byte](readRaw)
}

// Void discards the body.
func Void() Parser[any] {
	return Func[any](func(resp *httpclient.Response) (any, error) {
		_, err := io.Copy(io.Discard, resp.Body)
		if err != nil {
			return nil, parseError(resp, err)
		}
		return nil, nil
	})
}

// TrueIf2xx returns true for any successful response.
func TrueIf2xx() Parser[bool] {
	return Func[bool](func(resp *httpclient.Response) (bool, error) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.IsSuccess(), nil
	})
}

func readRaw(resp *httpclient.Response) ([]byte, error) {
	body, err := resp.ReadAll()
	if err != nil {
		return nil, parseError(resp, err)
	}
	return body, nil
}

// readBody reads the body for decoding, without surrounding whitespace.
func readBody(resp *httpclient.Response) ([]byte, error) {
	body, err := readRaw(resp)
	return bytes.TrimSpace(body), err
}

func parseError(resp *httpclient.Response, err error) error {
	ae := apperrors.Parse(err)
	if req := resp.Request(); req != nil {
		ae.WithRequest(req.Method(), req.URL().String())
	}
	return ae.WithDetail("status", resp.StatusCode)
}
