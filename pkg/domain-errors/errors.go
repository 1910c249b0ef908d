// Package domainerrors provides coded errors shared by every service. Codes
// classify failures so transport layers can translate them uniformly and
// services can branch on failure class without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation covers malformed input: wrong-length hashes,
	// out-of-range scores, unknown role or dispute type tags.
	CodeValidation Code = "validation"
	// CodeBadRequest covers transport-level request problems (bad JSON,
	// missing fields) before domain validation runs.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized means the caller is not authenticated.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the caller lacks the required role, binding, or
	// trust level.
	CodeForbidden Code = "forbidden"
	// CodeNotFound means the referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict covers state conflicts: duplicate registration,
	// duplicate votes, already-resolved disputes, withdrawing while active.
	CodeConflict Code = "conflict"
	// CodeCapacity covers bounded-resource rejections: reputation overflow
	// and the role-count limit.
	CodeCapacity Code = "capacity"
	// CodeInvariantViolation marks a broken model invariant. Services
	// usually translate these to CodeValidation at the API boundary.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
