package errors

import (
	"fmt"
	"strings"

	"github.com/kbukum/apikit/util"
)

// AppError is the unified error type of the engine.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates the failure is transient and may be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status code of the remote response, 0 when no response was received.
	HTTPStatus int `json:"status,omitempty"`
	// Method is the HTTP method of the failed request.
	Method string `json:"method,omitempty"`
	// URL is the redacted URL of the failed request.
	URL string `json:"url,omitempty"`
	// Body is the captured (possibly truncated) response body.
	Body []byte `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Method != "" || e.URL != "" {
		b.WriteString(strings.TrimSpace(e.Method + " " + e.URL))
		b.WriteString(": ")
	}
	if e.HTTPStatus > 0 {
		fmt.Fprintf(&b, "HTTP %d: ", e.HTTPStatus)
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Class returns the taxonomy class of the error.
func (e *AppError) Class() Class { return ClassOf(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithRequest records the request that failed. The URL is redacted before it is stored.
func (e *AppError) WithRequest(method, rawURL string) *AppError {
	e.Method = method
	e.URL = util.RedactURL(rawURL)
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Configuration ---

// Configuration creates an error for an invalid configuration.
func Configuration(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// MissingProperty creates an error for a required property that could not be resolved.
func MissingProperty(key, scope string) *AppError {
	details := map[string]any{"property": key}
	msg := fmt.Sprintf("property %s not present in properties", key)
	if scope != "" {
		details["scope"] = scope
		msg = fmt.Sprintf("property %s.%s not present in properties", scope, key)
	}
	return &AppError{Code: ErrCodeMissingProperty, Message: msg, Details: details}
}

// --- Argument ---

// InvalidArgument creates an error for an argument that cannot be used.
func InvalidArgument(name, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument %s: %s", name, reason),
		Details: map[string]any{"argument": name},
	}
}

// MissingArgument creates an error for a required argument that was not supplied.
func MissingArgument(name string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingArgument,
		Message: fmt.Sprintf("missing required argument %s", name),
		Details: map[string]any{"argument": name},
	}
}

// --- Transport ---

// ConnectionFailed creates an error for a request that produced no response.
func ConnectionFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: "connection failed",
		Retryable: true, Cause: cause,
	}
}

// Timeout creates an error for a call that exceeded its deadline.
func Timeout(cause error) *AppError {
	return &AppError{Code: ErrCodeTimeout, Message: "request timed out", Cause: cause}
}

// Cancelled creates an error for a call cancelled by the caller.
func Cancelled(cause error) *AppError {
	return &AppError{Code: ErrCodeCancelled, Message: "request cancelled", Cause: cause}
}

// RedirectLimit creates an error for a call that exceeded max-redirects.
func RedirectLimit(limit int) *AppError {
	return &AppError{
		Code:    ErrCodeRedirectLimit,
		Message: fmt.Sprintf("exceeded %d redirects", limit),
		Details: map[string]any{"max_redirects": limit},
	}
}

// --- Remote ---

// Remote creates an error for a non-2xx response.
func Remote(status int, body []byte) *AppError {
	return &AppError{
		Code:       ErrCodeRemote,
		Message:    "remote call failed",
		HTTPStatus: status,
		Body:       body,
	}
}

// NotFound creates an error for a provider-specific not-found condition
// detected without an HTTP 404 (for example an error code in a 200 body).
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", resource),
		Details: details,
	}
}

// --- Parse and lifecycle ---

// Parse creates an error for a response body that could not be parsed.
func Parse(cause error) *AppError {
	return &AppError{Code: ErrCodeParse, Message: "failed to parse response", Cause: cause}
}

// AlreadyClosed creates an error for use of a closed resource.
func AlreadyClosed(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeClosed,
		Message: fmt.Sprintf("%s is already closed", resource),
		Details: map[string]any{"resource": resource},
	}
}
