package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionEnded is reported when a 401 could not be resolved by a token
	// refresh; credentials have been cleared.
	ErrSessionEnded = errors.New("session ended")
	// ErrNoRefreshToken means there was nothing to refresh with.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrInvalidRequest is a request-shape failure caught before dispatch.
	ErrInvalidRequest = errors.New("invalid request")
)

// HTTPError is a non-2xx response. Payload is the raw response body.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Payload    []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Message extracts "message" or "error" from a JSON payload, or returns the
// body text as is.
func (e *HTTPError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	var s string
	if err := json.Unmarshal(e.Payload, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(e.Payload))
}

func (e *HTTPError) Unauthorized() bool { return e.StatusCode == 401 }
func (e *HTTPError) ClientError() bool  { return e.StatusCode >= 400 && e.StatusCode < 500 }
func (e *HTTPError) ServerError() bool  { return e.StatusCode >= 500 }

// NetworkError: no response reached the client.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SessionEndedError is returned for the original request when the refresh
// failed. It matches ErrSessionEnded, the original *HTTPError and the cause.
type SessionEndedError struct {
	Original *HTTPError
	Cause    error
}

func (e *SessionEndedError) Error() string {
	return fmt.Sprintf("session ended: %v", e.Cause)
}

func (e *SessionEndedError) Unwrap() []error {
	errs := []error{ErrSessionEnded}
	if e.Original != nil {
		errs = append(errs, e.Original)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func isUnauthorized(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) && he.Unauthorized() {
		return he, true
	}
	return nil, false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
