// Package errs holds the error taxonomy shared by the session library and the
// API server. Callers compare with errors.Is against the sentinels below.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks local precondition failures. No network call is made.
	ErrValidation = errors.New("validation failed")

	// ErrAuthRequired means the caller holds no valid session credential.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNetwork covers transport and server-side failures unrelated to auth.
	ErrNetwork = errors.New("network error")

	ErrNotFound = errors.New("not found")

	// ErrConflict is a validation failure detected by the server, e.g. a cart
	// whose prices changed between pricing and submission.
	ErrConflict = fmt.Errorf("%w: conflict", ErrValidation)
)

// Error carries the failed operation and, for remote failures, the HTTP status
// and server message. Err is one of the sentinels above (possibly wrapped).
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error for op with a user-facing message.
func Validation(op, message string) error {
	return &Error{Op: op, Message: message, Err: ErrValidation}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}

func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Message returns the user-facing part of err: the Message of an *Error when
// set, otherwise err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
