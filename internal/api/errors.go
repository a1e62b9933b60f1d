package api

import (
	"errors"
	"fmt"
)

// ErrorResponse is the error body the API returns on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Method     string
	Path       string

	// Message is the server-supplied error text, empty if the body had none.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path)
}

// AuthenticationError indicates the API rejected a login or registration.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError reports whether err (or any error in its chain) is
// an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// ServerMessage returns the server-supplied message carried by err, or
// fallback when err carries none. Transport failures always yield fallback.
func ServerMessage(err error, fallback string) string {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
