package httpclient

import (
	"context"
	"net/http"
	"slices"

	"github.com/hashicorp/go-retryablehttp"

	apperrors "github.com/kbukum/apikit/errors"
)

// RetryRule reports whether a failed attempt is transient.
type RetryRule func(err error) bool

// Classifier decides which failed attempts are retried. An error is retried
// when any rule accepts it, except that client errors (4xx), timeouts,
// cancellations, redirect limits and argument errors are never retried.
type Classifier struct {
	rules []RetryRule
}

// NewClassifier creates a classifier from rules. Without rules nothing is retried.
func NewClassifier(rules ...RetryRule) *Classifier {
	return &Classifier{rules: slices.Clone(rules)}
}

// DefaultClassifier retries connection failures and 500, 502, 503 and 504.
func DefaultClassifier() *Classifier {
	return NewClassifier(ConnectionErrors(), StatusCodes(
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	))
}

// With returns a classifier holding the receiver's rules followed by rules.
func (c *Classifier) With(rules ...RetryRule) *Classifier {
	return &Classifier{rules: append(slices.Clone(c.rules), rules...)}
}

// ShouldRetry reports whether err is transient.
func (c *Classifier) ShouldRetry(err error) bool {
	if err == nil || c == nil {
		return false
	}
	if status, ok := apperrors.StatusCode(err); ok && status >= 400 && status < 500 {
		return false
	}
	if apperrors.HasCode(err, apperrors.ErrCodeTimeout) ||
		apperrors.HasCode(err, apperrors.ErrCodeCancelled) ||
		apperrors.HasCode(err, apperrors.ErrCodeRedirectLimit) ||
		apperrors.IsArgument(err) ||
		apperrors.IsConfiguration(err) {
		return false
	}
	for _, rule := range c.rules {
		if rule(err) {
			return true
		}
	}
	return false
}

// ConnectionErrors accepts attempts that produced no response.
func ConnectionErrors() RetryRule {
	return func(err error) bool {
		return apperrors.HasCode(err, apperrors.ErrCodeConnectionFailed)
	}
}

// StatusCodes accepts remote failures with one of the given statuses.
func StatusCodes(codes ...int) RetryRule {
	return func(err error) bool {
		return apperrors.HasStatus(err, codes...)
	}
}

// RetryablehttpRule defers to go-retryablehttp's DefaultRetryPolicy, which
// retries most 5xx responses (except 501) and connection errors other than
// TLS verification and malformed URL failures.
func RetryablehttpRule() RetryRule {
	return func(err error) bool {
		ae, ok := apperrors.AsAppError(err)
		if !ok {
			return false
		}
		if ae.HTTPStatus > 0 {
			retry, _ := retryablehttp.DefaultRetryPolicy(context.Background(), &http.Response{
				StatusCode: ae.HTTPStatus,
				Header:     make(http.Header),
			}, nil)
			return retry
		}
		if ae.Code != apperrors.ErrCodeConnectionFailed || ae.Cause == nil {
			return false
		}
		retry, _ := retryablehttp.DefaultRetryPolicy(context.Background(), nil, ae.Cause)
		return retry
	}
}
