package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors (fatal at context build time)
const (
	// ErrCodeConfiguration indicates an invalid property, descriptor or strategy reference.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeMissingProperty indicates a required property is absent from the property bag.
	ErrCodeMissingProperty ErrorCode = "MISSING_PROPERTY"
)

// Argument errors (raised before any network I/O)
const (
	// ErrCodeInvalidArgument indicates a call-time argument cannot be used.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeMissingArgument indicates a required call-time argument is absent.
	ErrCodeMissingArgument ErrorCode = "MISSING_ARGUMENT"
)

// Transport errors
const (
	// ErrCodeConnectionFailed indicates the request never produced a response.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the per-call deadline elapsed.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeCancelled indicates the caller cancelled the call.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeRedirectLimit indicates more redirects than max-redirects were returned.
	ErrCodeRedirectLimit ErrorCode = "REDIRECT_LIMIT"
)

// Remote errors
const (
	// ErrCodeRemote indicates a non-2xx response.
	ErrCodeRemote ErrorCode = "REMOTE_CALL_FAILED"
	// ErrCodeNotFound indicates a provider-specific not-found condition.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Parse and lifecycle errors
const (
	// ErrCodeParse indicates the response body could not be parsed.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeClosed indicates an operation on a closed context or executor.
	ErrCodeClosed ErrorCode = "ALREADY_CLOSED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          false,
	ErrCodeRemote:           false,
}

// IsRetryableCode returns true if errors with the code are transient by default.
// Remote errors become retryable only when a retry classifier marks them so.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// Class groups error codes into the engine's taxonomy.
type Class string

const (
	ClassConfiguration Class = "configuration"
	ClassArgument      Class = "argument"
	ClassTransport     Class = "transport"
	ClassRemote        Class = "remote"
	ClassParse         Class = "parse"
	ClassLifecycle     Class = "lifecycle"
)

// ClassOf returns the taxonomy class of a code.
func ClassOf(code ErrorCode) Class {
	switch code {
	case ErrCodeConfiguration, ErrCodeMissingProperty:
		return ClassConfiguration
	case ErrCodeInvalidArgument, ErrCodeMissingArgument:
		return ClassArgument
	case ErrCodeConnectionFailed, ErrCodeTimeout, ErrCodeCancelled, ErrCodeRedirectLimit:
		return ClassTransport
	case ErrCodeRemote, ErrCodeNotFound:
		return ClassRemote
	case ErrCodeParse:
		return ClassParse
	default:
		return ClassLifecycle
	}
}
