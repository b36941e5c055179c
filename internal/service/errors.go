package service

import (
	"errors"
	"fmt"
)

// Kind classifies a caller-facing failure.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a validation or access failure with enough context (which field,
// which constraint) for the caller to render an actionable message.
// Anything else that escapes the service layer is a storage failure and the
// whole command may be safely retried.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func badRequest(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Field: field, Message: fmt.Sprintf(format, args...)}
}

func forbidden(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Field: field, Message: fmt.Sprintf(format, args...)}
}

func conflict(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
