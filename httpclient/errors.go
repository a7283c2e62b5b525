package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/kbukum/apikit/errors"
)

var errNotAbsolute = errors.New("url must be absolute")

// transportError converts a failed round trip into the engine taxonomy. The
// dispatch context decides between timeout, cancellation and connection failure.
func transportError(ctx context.Context, req *Request, err error) error {
	var ae *apperrors.AppError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		ae = apperrors.Timeout(err)
	case ctx.Err() != nil:
		ae = apperrors.Cancelled(err)
	default:
		ae = apperrors.ConnectionFailed(err)
	}
	return ae.WithRequest(req.method, req.url.String())
}

// contextError maps a context error returned while waiting (retry backoff,
// rate limiter, bulkhead) into the taxonomy.
func contextError(ctx context.Context, req *Request, err error) error {
	if ae, ok := err.(*apperrors.AppError); ok {
		return ae
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Timeout(err).WithRequest(req.method, req.url.String())
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return apperrors.Cancelled(err).WithRequest(req.method, req.url.String())
	default:
		return apperrors.ConnectionFailed(err).WithRequest(req.method, req.url.String())
	}
}

// remoteError captures up to maxBody bytes of a non-2xx response and closes it.
func remoteError(req *Request, resp *http.Response, maxBody int64) error {
	defer func() { _ = resp.Body.Close() }()

	var body []byte
	if req.method != http.MethodHead && maxBody > 0 {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	}
	ae := apperrors.Remote(resp.StatusCode, body).WithRequest(req.method, req.url.String())
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		ae.WithDetail("content_type", ct)
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		ae.WithDetail("retry_after", ra)
	}
	return ae
}
