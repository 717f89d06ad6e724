// Package apperr defines the error kinds shared by every domain package.
// Domain errors wrap exactly one kind so the HTTP layer can pick a status
// with errors.Is and never has to know about individual domain errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBusinessRule  = errors.New("business rule violation")
	ErrValidation    = errors.New("validation failed")
)

// Error is a coded domain error belonging to one kind.
type Error struct {
	kind    error
	code    string
	message string
	parent  *Error
}

// New returns a coded error of the given kind.
func New(kind error, code, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

func (e *Error) Error() string { return e.message }

// Code is the machine readable code sent to clients.
func (e *Error) Code() string { return e.code }

// Unwrap exposes the parent error if any, otherwise the kind.
func (e *Error) Unwrap() error {
	if e.parent != nil {
		return e.parent
	}
	return e.kind
}

// Withf returns a copy of e with a more specific message.
// The copy still matches e and e's kind with errors.Is.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{
		kind:    e.kind,
		code:    e.code,
		message: fmt.Sprintf(format, args...),
		parent:  e,
	}
}

// Coder is implemented by errors that carry a machine readable code.
type Coder interface {
	Code() string
}

// CodeOf returns the code of the first Coder in err's chain, or fallback.
func CodeOf(err error, fallback string) string {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return fallback
}

// KindOf returns the kind err belongs to, or nil for unexpected errors.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrAlreadyExists, ErrBusinessRule, ErrValidation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
