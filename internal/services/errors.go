package services

import (
	"errors"
)

// ErrorKind classifies a service failure for transport mapping
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a failure with a message safe to show the caller
type Error struct {
	Kind    ErrorKind
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

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func unauthorizedError(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func forbiddenError(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func conflictError(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// internalError keeps the underlying message visible to the client
func internalError(msg string, err error) error {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// NewValidationError is used by transports that validate before reaching a service
func NewValidationError(msg string) error {
	return validationError(msg)
}
