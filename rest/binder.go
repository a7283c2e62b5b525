package rest

import (
	"maps"
	"net/url"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/sjson"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
)

// Binder names registered by default.
const (
	BinderJSON    = "json"
	BinderJSONMap = "json-map"
	BinderForm    = "form"
	BinderString  = "string"
)

// Binder writes the payload arguments, keyed by wire name, into the request body.
type Binder interface {
	Bind(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error)
}

// BinderFunc adapts a function to Binder.
type BinderFunc func(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error)

// Bind calls f.
func (f BinderFunc) Bind(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error) {
	return f(req, payload)
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON encodes the payload map as a JSON object. A single payload argument
// with wire name "." becomes the whole body.
func JSON() Binder {
	return BinderFunc(func(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error) {
		var doc any = payload
		if v, ok := payload["."]; ok && len(payload) == 1 {
			doc = v
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return nil, apperrors.InvalidArgument("payload", err.Error())
		}
		return withBody(req, body, "application/json"), nil
	})
}

// JSONMap builds a JSON object by setting each payload value at its wire
// name, read as a dotted path ("server.name", "tags.0").
func JSONMap() Binder {
	return BinderFunc(func(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error) {
		body := []byte("{}")
		for _, path := range slices.Sorted(maps.Keys(payload)) {
			var err error
			body, err = sjson.SetBytes(body, path, payload[path])
			if err != nil {
				return nil, apperrors.InvalidArgument(path, err.Error())
			}
		}
		return withBody(req, body, "application/json"), nil
	})
}

// Form encodes the payload as application/x-www-form-urlencoded.
func Form() Binder {
	return BinderFunc(func(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error) {
		form := url.Values{}
		for key, v := range payload {
			vals, err := values(v)
			if err != nil {
				return nil, apperrors.InvalidArgument(key, err.Error())
			}
			form[key] = vals
		}
		return withBody(req, []byte(form.Encode()), "application/x-www-form-urlencoded"), nil
	})
}

// String writes the single payload value as text.
func String() Binder {
	return BinderFunc(func(req *httpclient.Request, payload map[string]any) (*httpclient.Request, error) {
		if len(payload) > 1 {
			return nil, apperrors.InvalidArgument("payload", "string binder takes a single value")
		}
		var body string
		for key, v := range payload {
			s, err := scalar(v)
			if err != nil {
				return nil, apperrors.InvalidArgument(key, err.Error())
			}
			body = s
		}
		return withBody(req, []byte(body), "text/plain; charset=utf-8"), nil
	})
}

// withBody sets the body and, unless the descriptor chose one, the content type.
func withBody(req *httpclient.Request, body []byte, contentType string) *httpclient.Request {
	req = req.WithBody(body)
	if req.HeaderValue("Content-Type") == "" {
		req = req.WithHeader("Content-Type", contentType)
	}
	return req
}
