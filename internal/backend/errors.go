package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== BACKEND API ERRORS =====

var (
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrForbidden    = errors.New("backend denied access")
	ErrNotFound     = errors.New("backend resource not found")
)

// APIError carries the status and message the backend returned for a failed call
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Path       string `json:"path"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend request failed: %s (%d): %s", e.Path, e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can use errors.Is
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// IsUnauthorized reports whether the error is a 401 from the backend
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether the error is a 404 from the backend
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
