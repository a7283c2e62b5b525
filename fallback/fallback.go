// Package fallback holds the recovery policies an operation may declare.
//
// A fallback receives the failure of an invocation and either returns a
// substitute value, in which case the invocation succeeds with it, or returns
// an error. Every policy shipped here is total: a failure it does not match
// is returned unchanged.
package fallback

import (
	"net/http"

	apperrors "github.com/kbukum/apikit/errors"
)

// Names of the fallbacks registered by default.
const (
	NameNullOnNotFound      = "null-on-not-found"
	NameVoidOnNotFound      = "void-on-not-found"
	NameFalseOnNotFound     = "false-on-not-found"
	NameTrueOnNotFound      = "true-on-not-found"
	NameEmptyListOnNotFound = "empty-list-on-not-found"
	NameEmptyMapOnNotFound  = "empty-map-on-not-found"
	NameAbsentOnUnsupported = "absent-on-unsupported"
	NameAbsentOn403404500   = "absent-on-403-404-500"
	NamePropagate           = "propagate"
)

// Fallback converts a failure into a substitute value or an error.
type Fallback interface {
	Recover(err error) (any, error)
}

// Func adapts a function to Fallback.
type Func func(err error) (any, error)

// Recover calls f.
func (f Func) Recover(err error) (any, error) { return f(err) }

// ValueOn returns v when match accepts the failure and the failure otherwise.
func ValueOn(match func(error) bool, v any) Fallback {
	return Func(func(err error) (any, error) {
		if err != nil && match(err) {
			return v, nil
		}
		return nil, err
	})
}

// Propagate returns every failure unchanged.
func Propagate() Fallback {
	return Func(func(err error) (any, error) { return nil, err })
}

// NullOnNotFound yields nil for a not-found failure.
func NullOnNotFound() Fallback { return ValueOn(apperrors.IsNotFound, nil) }

// VoidOnNotFound yields nothing for a not-found failure; used by operations without a result.
func VoidOnNotFound() Fallback { return ValueOn(apperrors.IsNotFound, nil) }

// FalseOnNotFound yields false for a not-found failure.
func FalseOnNotFound() Fallback { return ValueOn(apperrors.IsNotFound, false) }

// TrueOnNotFound yields true for a not-found failure. Delete operations use it
// so that deleting a missing resource succeeds.
func TrueOnNotFound() Fallback { return ValueOn(apperrors.IsNotFound, true) }

// EmptyListOnNotFound yields an empty list for a not-found failure.
func EmptyListOnNotFound() Fallback { return ValueOn(apperrors.IsNotFound, []any{}) }

// EmptyMapOnNotFound yields an empty map for a not-found failure.
func EmptyMapOnNotFound() Fallback { return ValueOn(apperrors.IsNotFound, map[string]any{}) }

// AbsentOnCodes yields nil when the failure carries one of the HTTP statuses.
func AbsentOnCodes(codes ...int) Fallback {
	return ValueOn(func(err error) bool { return apperrors.HasStatus(err, codes...) }, nil)
}

// AbsentOnUnsupported yields nil for 403, 404 and 500, the statuses providers
// use when a feature is not available.
func AbsentOnUnsupported() Fallback {
	return AbsentOnCodes(http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError)
}

// Defaults returns the fallbacks registered under their default names.
func Defaults() map[string]Fallback {
	return map[string]Fallback{
		NameNullOnNotFound:      NullOnNotFound(),
		NameVoidOnNotFound:      VoidOnNotFound(),
		NameFalseOnNotFound:     FalseOnNotFound(),
		NameTrueOnNotFound:      TrueOnNotFound(),
		NameEmptyListOnNotFound: EmptyListOnNotFound(),
		NameEmptyMapOnNotFound:  EmptyMapOnNotFound(),
		NameAbsentOnUnsupported: AbsentOnUnsupported(),
		NameAbsentOn403404500:   AbsentOnUnsupported(),
		NamePropagate:           Propagate(),
	}
}
