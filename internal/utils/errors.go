package utils

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindConflict     ErrorKind = "CONFLICT"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindAlreadyPaid  ErrorKind = "ALREADY_PAID"
	KindAlreadyRated ErrorKind = "ALREADY_RATED"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindInternal     ErrorKind = "INTERNAL_ERROR"
)

// AppError is the typed error raised by services. Handlers turn the kind
// into a status code.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrInvalidState = &AppError{Kind: KindInvalidState}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrAlreadyPaid  = &AppError{Kind: KindAlreadyPaid}
	ErrAlreadyRated = &AppError{Kind: KindAlreadyRated}
)

func NewNotFoundError(resource string) error {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewForbiddenError(message string) error {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewInvalidStateError(message string) error {
	return &AppError{Kind: KindInvalidState, Message: message}
}

func NewConflictError(message string) error {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewValidationError(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewAlreadyPaidError(message string) error {
	return &AppError{Kind: KindAlreadyPaid, Message: message}
}

func NewAlreadyRatedError(message string) error {
	return &AppError{Kind: KindAlreadyRated, Message: message}
}

func NewUnauthorizedError(message string) error {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// KindOf returns KindInternal for errors that carry no kind.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
