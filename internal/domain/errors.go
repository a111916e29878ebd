package domain

import (
	"errors"
	"fmt"
)

// InvalidArgumentError is a validation failure. The message always carries a
// concrete remedy or the enumerated set of accepted values.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("Invalid argument: %s", e.Message)
}

// NotFoundError means an entity ID did not resolve on any configured source.
type NotFoundError struct {
	Entity     string
	ID         string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found. %s", e.Entity, e.ID, e.Suggestion)
}

// APIError is an upstream failure: non-2xx status, timeout, or malformed
// body. API carries the logical source name so users see which service failed.
type APIError struct {
	API     string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.API, e.Message)
}

// APIJSONError means the upstream returned 2xx but the body failed to parse.
type APIJSONError struct {
	API string
	Err error
}

func (e *APIJSONError) Error() string {
	return fmt.Sprintf("%s returned invalid JSON: %v", e.API, e.Err)
}

func (e *APIJSONError) Unwrap() error { return e.Err }

// HTTPClientInitError reports a one-time initialization failure of the shared
// HTTP client.
type HTTPClientInitError struct {
	Err error
}

func (e *HTTPClientInitError) Error() string {
	return fmt.Sprintf("HTTP client initialization failed: %v", e.Err)
}

func (e *HTTPClientInitError) Unwrap() error { return e.Err }

// NewInvalidArgument builds an InvalidArgumentError with a formatted message.
func NewInvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// NewNotFound builds a NotFoundError with a search suggestion.
func NewNotFound(entity, id, suggestion string) error {
	return &NotFoundError{Entity: entity, ID: id, Suggestion: suggestion}
}

// NewAPIError builds an APIError with a formatted message.
func NewAPIError(api, format string, args ...any) error {
	return &APIError{API: api, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument reports whether err is a validation failure (exit code 1).
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is an unresolved-entity failure.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAPIError reports whether err is an upstream failure (exit code 2), and
// returns the logical API name when it is.
func IsAPIError(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.API, true
	}
	var jsonErr *APIJSONError
	if errors.As(err, &jsonErr) {
		return jsonErr.API, true
	}
	return "", false
}

// ExitCode maps an error to the CLI exit code contract: 0 success, 1 user
// error, 2 upstream failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsInvalidArgument(err), IsNotFound(err):
		return 1
	default:
		return 2
	}
}
