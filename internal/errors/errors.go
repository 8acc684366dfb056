package errors

import (
	"errors"
	"fmt"
)

// Common error types for the operator console
var (
	// Request classification
	ErrUnauthorized       = errors.New("unauthorized")
	ErrDomain             = errors.New("request failed")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrInvalidResponse    = errors.New("invalid response body")

	// Session errors
	ErrNoCredential     = errors.New("no credential")
	ErrInvalidStoredKey = errors.New("invalid stored credential")

	// Synchronizer errors
	ErrTerminated = errors.New("subscription terminated")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
