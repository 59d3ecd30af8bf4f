// Package apperr defines the typed error taxonomy for business-rule
// violations. Every membership and invitation operation reports failures
// through one of five kinds so that callers can branch on the kind rather
// than on error strings, and so the HTTP layer can map each kind to a
// status code. Infrastructure failures (database unreachable, bad SQL)
// are never wrapped in these kinds; they propagate as plain errors.
package apperr

import "errors"

// Kind classifies a business-rule failure.
type Kind int

const (
	// KindUnknown marks errors outside the taxonomy (infrastructure).
	KindUnknown Kind = iota
	// KindNotFound: household, invitation, member, or resource absent.
	KindNotFound
	// KindForbidden: the actor lacks permission for the operation.
	KindForbidden
	// KindConflict: the resource already exists or is already satisfied.
	KindConflict
	// KindStateConflict: valid resource in the wrong lifecycle state.
	KindStateConflict
	// KindValidation: malformed or semantically illegal input.
	KindValidation
)

// Error is a classified business-rule failure with a stable
// machine-readable code and a human-readable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports an absent resource.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Forbidden reports a denied authorization decision.
func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

// Conflict reports a resource that already exists or a rule that is
// already satisfied.
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// StateConflict reports a resource in the wrong lifecycle state.
func StateConflict(code, message string) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Message: message}
}

// Validation reports malformed or semantically illegal input.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// KindOf returns the taxonomy kind of err, or KindUnknown when err is not
// (and does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable code of err, or "" for untyped errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsKind reports whether err carries the given taxonomy kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
