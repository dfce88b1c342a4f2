package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the resolver and persistence pipeline.
var (
	// ErrDuplicate - the request was already accepted within the dedup window.
	// Not a failure; callers surface it as "already recorded".
	ErrDuplicate = errors.New("duplicate request")

	// ErrInvalidInput - request shape, format, or token error. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found.
	ErrNotFound = errors.New("not found")

	// ErrTransient - temporary condition, safe to retry from the caller side.
	ErrTransient = errors.New("transient error")

	// ErrInternal - the request resolved but an internal collaborator failed.
	ErrInternal = errors.New("internal error")
)

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InvalidInput wraps a message as an invalid input error.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// InvalidInputf wraps a formatted message as an invalid input error.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// NotFound wraps a message as a not found error.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// Transient wraps a message as a transient error.
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps a message as an internal error.
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// IsCategory checks if err belongs to a sentinel category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}
