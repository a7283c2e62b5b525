package httpclient

import (
	"context"
	"strconv"
	"time"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Doer performs one attempt of a request, following redirects.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }

// Middleware wraps a Doer with cross-cutting behavior. It runs once per attempt.
type Middleware func(next Doer) Doer

// Chain composes middlewares. The first is outermost:
// Chain(a, b, c)(d) is a(b(c(d))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Doer) Doer {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

type attemptKey struct{}

func withAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// AttemptFromContext returns the 1-based attempt number of the current dispatch.
func AttemptFromContext(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok {
		return n
	}
	return 1
}

// WithLogging logs each attempt: failures at warn level, successes at debug.
func WithLogging(log *logger.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next.Do(ctx, req)

			fields := logger.Fields(
				logger.FieldMethod, req.Method(),
				logger.FieldURL, req.RedactedURL(),
				logger.FieldAttempt, AttemptFromContext(ctx),
				logger.FieldDuration, time.Since(start).String(),
			)
			l := log.WithContext(ctx)
			if err != nil {
				fields[logger.FieldError] = err.Error()
				if status, ok := apperrors.StatusCode(err); ok {
					fields[logger.FieldStatus] = status
				}
				l.Warn("dispatch failed", fields)
				return nil, err
			}
			fields[logger.FieldStatus] = resp.StatusCode
			l.Debug("dispatch ok", fields)
			return resp, nil
		})
	}
}

// WithMetrics records each attempt on m, labelled with api.
func WithMetrics(m *observability.Metrics, api string) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			m.RecordDispatchStart(ctx)
			if AttemptFromContext(ctx) > 1 {
				m.RecordRetry(ctx, api, req.Method())
			}
			resp, err := next.Do(ctx, req)
			m.RecordDispatchEnd(ctx, api, req.Method(), statusLabel(resp, err), time.Since(start))
			if err != nil {
				if ae, ok := apperrors.AsAppError(err); ok {
					m.RecordError(ctx, string(ae.Code), "dispatcher")
				}
			}
			return resp, err
		})
	}
}

// WithTracing opens a client span around each attempt.
func WithTracing() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			ctx, span := observability.StartSpan(ctx, observability.SpanDispatch)
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, req.Method())
			observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, req.RedactedURL())
			observability.SetSpanAttribute(ctx, observability.AttrAttempt, AttemptFromContext(ctx))

			resp, err := next.Do(ctx, req)
			if err != nil {
				if status, ok := apperrors.StatusCode(err); ok {
					observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, status)
				}
				observability.SetSpanError(ctx, err)
				return nil, err
			}
			observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, resp.StatusCode)
			return resp, nil
		})
	}
}

func statusLabel(resp *Response, err error) string {
	if err == nil {
		return strconv.Itoa(resp.StatusCode)
	}
	if status, ok := apperrors.StatusCode(err); ok {
		return strconv.Itoa(status)
	}
	if ae, ok := apperrors.AsAppError(err); ok {
		return string(ae.Code)
	}
	return "error"
}
