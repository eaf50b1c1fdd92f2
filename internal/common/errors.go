// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Inference errors.
	ErrSizeLimitExceeded  = errors.New("input size limit exceeded")
	ErrTransientService   = errors.New("inference service unavailable")
	ErrMalformedResponse  = errors.New("malformed model response")
	ErrIncompleteResponse = errors.New("incomplete model response")
	ErrEmptyResponse      = errors.New("model returned an empty response")

	// Input errors.
	ErrUnsupportedInputFormat = errors.New("unsupported input format")
	ErrEmptyInput             = errors.New("no input to analyze")

	// State errors.
	ErrDuplicateRowID = errors.New("duplicate row id")
	ErrNoDashboard    = errors.New("no dashboard loaded")
	ErrBusy           = errors.New("analysis already in progress")
	ErrStale          = errors.New("result discarded: session changed while analysis was running")

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

// Describe returns the single human-readable message shown for a failed analysis call.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}

	switch {
	case errors.Is(err, ErrSizeLimitExceeded):
		return "The input is too large to analyze (limit is 2,000,000 characters). Use a smaller file or fewer transcripts."
	case errors.Is(err, ErrMalformedResponse):
		return "The AI returned malformed data that could not be parsed. This can happen with complex text. Please try again."
	case errors.Is(err, ErrIncompleteResponse):
		return "The AI response was missing required fields. Please try again."
	case errors.Is(err, ErrTransientService):
		return "The AI failed to generate a response after multiple attempts. The service may be overloaded; please try again later."
	case errors.Is(err, ErrUnsupportedInputFormat):
		return "Unsupported file type. Please use .txt, .pdf, or .docx files."
	case errors.Is(err, ErrEmptyInput):
		return "There is nothing to analyze. Provide a CSV export with rows or some transcript text."
	case errors.Is(err, ErrNoDashboard):
		return "Analyze a CRM export before analyzing transcripts."
	case errors.Is(err, ErrBusy):
		return "An analysis is already running. Wait for it to finish."
	case errors.Is(err, ErrStale):
		return "The session was reset while the analysis was running, so its result was discarded."
	case errors.Is(err, context.Canceled):
		return "The analysis was canceled."
	default:
		return fmt.Sprintf("Unexpected error while communicating with the AI service: %v", err)
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
