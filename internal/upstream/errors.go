package upstream

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when no API key was configured at
// startup. The gateway fails closed rather than calling the upstream
// unauthenticated.
var ErrMissingCredential = errors.New("upstream API key not configured")

// ErrNoImage is returned when the image endpoint responds 200 but
// carries no image URL.
var ErrNoImage = errors.New("upstream returned no image data")

// StatusError is a non-2xx response from the upstream service. Body is
// kept for diagnostic logging only and must never reach the caller.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
