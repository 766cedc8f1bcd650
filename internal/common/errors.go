// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Run errors.
	ErrRunNotFound  = errors.New("assignment run not found")
	ErrRunInProcess = errors.New("an assignment run is already in progress")

	// Input errors.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration errors.
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

// RecordError ties a per-record failure to the imputation it happened on.
// The run continues past these.
type RecordError struct {
	Err          error
	ImputationID int64
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("imputation %d: %v", e.ImputationID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
