package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotConnected     = errors.New("realtime connection is not open")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrProductNotFound  = errors.New("product not found")
)

// AuthError is returned for 401 responses that survived the reauthentication
// retry and for 403 responses.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("auth error %d", e.Status)
}

// HTTPError carries any other non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Message
}

// NetworkError is a transport level failure: nothing usable came back from
// the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error - please check your connection: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is a malformed realtime frame.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse realtime frame: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is a client-side input check failure. It never reaches the
// network layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsUnauthorized reports whether err is an AuthError with status 401.
func IsUnauthorized(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Status == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Status == http.StatusForbidden
}
