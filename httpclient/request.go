package httpclient

import (
	"bytes"
	"context"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/kbukum/apikit/util"
)

// Request is an immutable outbound HTTP request. Modifiers return copies, so a
// request can be shared between retries, redirects and filters safely.
type Request struct {
	method string
	url    *url.URL
	header http.Header
	body   []byte
	host   string
}

// NewRequest creates a request. rawURL must be absolute.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, &url.Error{Op: "parse", URL: rawURL, Err: errNotAbsolute}
	}
	return &Request{method: method, url: u, header: make(http.Header)}, nil
}

func (r *Request) clone() *Request {
	u := *r.url
	if r.url.User != nil {
		user := *r.url.User
		u.User = &user
	}
	return &Request{
		method: r.method,
		url:    &u,
		header: r.header.Clone(),
		body:   r.body,
		host:   r.host,
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns a copy of the request URL.
func (r *Request) URL() *url.URL {
	u := *r.url
	return &u
}

// Header returns a copy of the headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

// HeaderValue returns the first value of the named header.
func (r *Request) HeaderValue(name string) string { return r.header.Get(name) }

// Body returns a copy of the body.
func (r *Request) Body() []byte { return slices.Clone(r.body) }

// Host returns the Host header override, empty when the URL host is used.
func (r *Request) Host() string { return r.host }

// RedactedURL returns the URL with secrets masked, suitable for logs and errors.
func (r *Request) RedactedURL() string { return util.RedactURL(r.url.String()) }

// WithMethod returns a copy using method.
func (r *Request) WithMethod(method string) *Request {
	c := r.clone()
	c.method = method
	return c
}

// WithURL returns a copy targeting u.
func (r *Request) WithURL(u *url.URL) *Request {
	c := r.clone()
	nu := *u
	c.url = &nu
	return c
}

// WithHeader returns a copy with the header set to value, replacing earlier values.
func (r *Request) WithHeader(name, value string) *Request {
	c := r.clone()
	c.header.Set(name, value)
	return c
}

// AddHeader returns a copy with value appended to the header.
func (r *Request) AddHeader(name, value string) *Request {
	c := r.clone()
	c.header.Add(name, value)
	return c
}

// WithoutHeader returns a copy without the header.
func (r *Request) WithoutHeader(name string) *Request {
	c := r.clone()
	c.header.Del(name)
	return c
}

// WithQuery returns a copy with values appended to the query parameter.
// A call without values adds the bare key.
func (r *Request) WithQuery(key string, values ...string) *Request {
	c := r.clone()
	c.url.RawQuery = appendQuery(c.url.RawQuery, key, values)
	return c
}

// WithBody returns a copy carrying body.
func (r *Request) WithBody(body []byte) *Request {
	c := r.clone()
	c.body = slices.Clone(body)
	return c
}

// WithHost returns a copy sending host in the Host header.
func (r *Request) WithHost(host string) *Request {
	c := r.clone()
	c.host = host
	return c
}

func (r *Request) toHTTP(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), body)
	if err != nil {
		return nil, err
	}
	maps.Copy(req.Header, r.header.Clone())
	if r.host != "" {
		req.Host = r.host
	}
	return req, nil
}

// appendQuery adds key to an encoded query without re-encoding the rest, so
// bare keys and the order of existing parameters survive.
func appendQuery(raw, key string, values []string) string {
	var b bytes.Buffer
	b.WriteString(raw)
	if len(values) == 0 {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		return b.String()
	}
	for _, v := range values {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String()
}

// Response is a successful HTTP response. The body stays open until Release,
// which must be called exactly once by the consumer; later calls are no-ops.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser

	request  *Request
	once     sync.Once
	mu       sync.Mutex
	releases []func()
}

func newResponse(req *Request, resp *http.Response) *Response {
	body := resp.Body
	if req.method == http.MethodHead {
		_ = body.Close()
		body = http.NoBody
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		request:    req,
	}
}

// NewResponse builds a response around body; used by custom transports and tests.
func NewResponse(req *Request, status int, header http.Header, body io.ReadCloser) *Response {
	if header == nil {
		header = make(http.Header)
	}
	if body == nil {
		body = http.NoBody
	}
	return &Response{StatusCode: status, Header: header, Body: body, request: req}
}

// Request returns the request that produced the response, after redirects.
func (r *Response) Request() *Request { return r.request }

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// ReadAll reads the remaining body. It does not release the response.
func (r *Response) ReadAll() ([]byte, error) { return io.ReadAll(r.Body) }

// Release drains a bounded amount of the body, closes it and frees the
// resources held for the exchange.
func (r *Response) Release() {
	r.once.Do(func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 4<<10))
		_ = r.Body.Close()
		r.mu.Lock()
		fns := r.releases
		r.releases = nil
		r.mu.Unlock()
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	})
}

// OnRelease registers fn to run when the response is released.
func (r *Response) OnRelease(fn func()) {
	r.mu.Lock()
	r.releases = append(r.releases, fn)
	r.mu.Unlock()
}
