package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable is a connectivity failure: the liveness probe failed or
	// the network call never produced a response.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrMalformedResponse is a success status with a body that cannot be used.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// StatusError is a backend rejection: any non-success status.
type StatusError struct {
	StatusCode int
	Status     string
	// Message is derived from the response body, see errorMessage.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend rejected request (%s): %s", e.Status, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == code
}
