// Package apperrors defines the error taxonomy surfaced through the HTTP
// layer. Services return these; handlers translate them to status codes.
// Anything that is not an *Error is treated as an internal error and its
// message never reaches the client.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindLocked
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string

	// RetryAfter is set for KindLocked and tells the client how long
	// until the lockout window expires.
	RetryAfter time.Duration

	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Validation returns a 400-class error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Conflict returns a 409-class error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthorized returns a 401-class error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden returns a 403-class error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns a 404-class error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Locked returns a 429-class error carrying the remaining lockout time.
func Locked(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindLocked, Message: message, RetryAfter: retryAfter}
}

// Wrap attaches an underlying cause, preserving the classification.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, RetryAfter: e.RetryAfter, err: err}
}

// KindOf returns the classification of err, or KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the *Error from err if present.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
