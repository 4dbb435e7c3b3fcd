package connection

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNetwork        = errors.New("network error")
	ErrInvalidRequest = errors.New("invalid request")
)

// UnauthorizedError is returned for a 401 response. By the time it is
// returned the session has been cleared.
type UnauthorizedError struct {
	Method    string
	Path      string
	RequestID string
	Message   string
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return "unauthorized: " + e.Message
	}
	return "unauthorized: session expired or invalid, please log in again"
}

// Is matches ErrUnauthorized.
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// APIError is returned for any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// StatusCode extracts the HTTP status from err, or 0 if err carries none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var authErr *UnauthorizedError
	if errors.As(err, &authErr) {
		return 401
	}
	return 0
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

// errorPayload is the error body shape the backend may send.
type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// text returns the most specific message in the payload.
func (p errorPayload) text() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Error
}
