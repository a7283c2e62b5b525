package errors

import (
	stderrors "errors"
	"net/http"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in the cause chain carries the code.
func HasCode(err error, code ErrorCode) bool {
	found := false
	walk(err, func(e error) bool {
		if ae, ok := e.(*AppError); ok && ae.Code == code {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasClass reports whether any AppError in the cause chain belongs to the class.
func HasClass(err error, class Class) bool {
	found := false
	walk(err, func(e error) bool {
		if ae, ok := e.(*AppError); ok && ae.Class() == class {
			found = true
			return false
		}
		return true
	})
	return found
}

// StatusCode returns the first HTTP status found in the cause chain.
func StatusCode(err error) (int, bool) {
	status := 0
	walk(err, func(e error) bool {
		if ae, ok := e.(*AppError); ok && ae.HTTPStatus > 0 {
			status = ae.HTTPStatus
			return false
		}
		return true
	})
	return status, status > 0
}

// HasStatus reports whether any error in the cause chain carries one of the status codes.
func HasStatus(err error, codes ...int) bool {
	found := false
	walk(err, func(e error) bool {
		ae, ok := e.(*AppError)
		if !ok || ae.HTTPStatus == 0 {
			return true
		}
		for _, c := range codes {
			if ae.HTTPStatus == c {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// IsNotFound reports whether the failure means the resource does not exist:
// an HTTP 404 anywhere in the chain or an explicit NOT_FOUND error.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound) || HasCode(err, ErrCodeNotFound)
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool { return HasClass(err, ClassConfiguration) }

// IsArgument checks if an error is an argument error.
func IsArgument(err error) bool { return HasClass(err, ClassArgument) }

// IsTransport checks if an error is a transport error (connection, timeout, redirects).
func IsTransport(err error) bool { return HasClass(err, ClassTransport) }

// IsTimeout checks if an error is a timeout.
func IsTimeout(err error) bool { return HasCode(err, ErrCodeTimeout) }

// IsRemote checks if an error is a remote call failure.
func IsRemote(err error) bool { return HasClass(err, ClassRemote) }

// IsParse checks if an error is a parse error.
func IsParse(err error) bool { return HasCode(err, ErrCodeParse) }

// IsClosed checks if an error reports use of a closed resource.
func IsClosed(err error) bool { return HasCode(err, ErrCodeClosed) }

// IsRetryable reports whether the outermost AppError is marked retryable.
func IsRetryable(err error) bool {
	if ae, ok := AsAppError(err); ok {
		return ae.Retryable
	}
	return false
}

// walk visits err and its causes depth-first until visit returns false.
func walk(err error, visit func(error) bool) bool {
	for err != nil {
		if !visit(err) {
			return false
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if !walk(inner, visit) {
					return false
				}
			}
			return true
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		default:
			return true
		}
	}
	return true
}
