package service

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/validation"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is returned by every service operation that fails for a reason the caller can act on.
type Error struct {
	Kind    Kind
	Message string
	Fields  validation.Errors
}

func (e *Error) Error() string {
	if len(e.Fields) != 0 {
		return e.Message + ": " + e.Fields.Error()
	}
	return e.Message
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

func forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func notFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// invalid turns the result of a validation.Set into an Error, keeping nil as nil.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
	}
	return errors.Wrap(err, "validate")
}

// KindOf reports the taxonomy member of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
