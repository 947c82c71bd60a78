package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the service answers 404.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when a service cannot be reached
	// (connection refused, DNS failure, timeout).
	ErrUnavailable = errors.New("service unavailable")

	// ErrBadResponse is returned when a 2xx response body cannot be decoded.
	ErrBadResponse = errors.New("unexpected response")

	// ErrNotLoggedIn is returned when an operation needs a session and there is none.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx response from one of the services.
type APIError struct {
	StatusCode int
	// Message is the server-provided "error" field, if any.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// ConnError wraps a transport failure talking to the named service.
type ConnError struct {
	Service string // "user" or "task"
	Err     error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("unable to connect to %s service", e.Service)
}

func (e *ConnError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnavailable) match transport failures.
func (e *ConnError) Is(target error) bool {
	return target == ErrUnavailable
}

// Message returns the text shown to the user for err: the server-provided
// message of an APIError, the connection failure text, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var connErr *ConnError
	if errors.As(err, &connErr) {
		return connErr.Error()
	}
	if fallback == "" && err != nil {
		return err.Error()
	}
	return fallback
}
