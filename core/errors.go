package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthenticated means no usable credential is held: the caller must prompt a login.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means the session is valid but lacks the required role.
	ErrForbidden = errors.New("permission denied")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// APIError is a non-2xx answer of the REST API.
type APIError struct {
	Status        int
	Method        string
	Path          string
	Message       string      // user-facing
	ServerMessage string      // as sent by the server, may be empty
	Details       interface{} // decoded body (field errors etc.)
}

func (err *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", err.Method, err.Path, err.Status, err.Message)
}

// Is lets errors.Is(err, ErrUnauthenticated) match a 401 and ErrForbidden a 403.
func (err *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return err.Status == http.StatusUnauthorized
	case ErrForbidden:
		return err.Status == http.StatusForbidden
	}
	return false
}

// ConnectivityError is a transport failure: no HTTP status is available.
type ConnectivityError struct {
	Op      string
	Timeout bool
	Err     error
}

func (err *ConnectivityError) Error() string {
	if err.Timeout {
		return err.Op + ": timeout: " + err.Err.Error()
	}
	return err.Op + ": " + err.Err.Error()
}

func (err *ConnectivityError) Unwrap() error { return err.Err }

// IsConnectivity reports whether err (or its cause chain) is a transport failure.
func IsConnectivity(err error) bool {
	var cErr *ConnectivityError
	return errors.As(err, &cErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var aErr *APIError
	if errors.As(err, &aErr) {
		return aErr.Status
	}
	return 0
}

// NormalizedError is an error shaped for display.
type NormalizedError struct {
	Status  int         `json:"status,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (n NormalizedError) Error() string { return n.Message }
