package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrLoggedOut is returned when a call cannot proceed because the session has
// no usable credentials (missing refresh token, or refresh rejected).
var ErrLoggedOut = errors.New("session is logged out")

// APIError represents a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an APIError with a 401 status
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsConflict reports whether err is an APIError with a 409 status. Callers
// use this to tell an optimistic-concurrency conflict ("edited elsewhere,
// reload") apart from a generic failure.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is an APIError with a 404 status
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
