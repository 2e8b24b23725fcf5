// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Taxonomy errors. These are fatal: a run stops before any file is written.
	ErrInvalidMapping = errors.New("invalid category mapping")
	ErrMissingGroup   = errors.New("canonical category has no group")

	// Record errors. These are recoverable: the record is skipped.
	ErrInvalidRecord = errors.New("invalid record")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsFatal reports whether err means the taxonomy itself is unusable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidMapping) || errors.Is(err, ErrMissingGroup)
}
