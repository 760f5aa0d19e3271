// Package apperr defines the user-facing error taxonomy of the engine.
//
// Every guard failure in the quota, membership and requests packages is an
// *Error with one of the Kinds below. Transport layers map the Kind to a
// status code; the Message is safe to show to the caller verbatim.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a recoverable error.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that are not *Error.
	KindUnknown Kind = iota
	// KindValidation: malformed input the caller can correct.
	KindValidation
	// KindQuotaExceeded: a per-user limit guard failed.
	KindQuotaExceeded
	// KindAuthorization: the caller lacks rights for the action.
	KindAuthorization
	// KindStateConflict: the entity is not in the state the transition needs.
	KindStateConflict
	// KindNotFound: the id does not exist, or existence is masked.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a typed, user-facing engine error.
type Error struct {
	Kind    Kind
	Message string

	// Limit, Count and Max are set for KindQuotaExceeded only.
	Limit string
	Count int
	Max   int
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error of the same Kind, so errors.Is(err, ErrNotFound)
// style checks work against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks by kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrStateConflict = &Error{Kind: KindStateConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// Forbidden reports that the caller may not perform the action.
func Forbidden(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

// Conflict reports that the entity is in the wrong state.
func Conflict(format string, args ...any) *Error {
	return newf(KindStateConflict, format, args...)
}

// NotFound reports a missing (or deliberately masked) entity.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Quota reports a failed limit guard, naming the limit and current usage.
func Quota(limit string, count, max int) *Error {
	return &Error{
		Kind:    KindQuotaExceeded,
		Message: fmt.Sprintf("%s limit reached: %d of %d used", limit, count, max),
		Limit:   limit,
		Count:   count,
		Max:     max,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
