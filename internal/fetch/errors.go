package fetch

import (
	"errors"
	"fmt"
)

// ErrFileTooLarge is returned when a download exceeds the configured
// size limit, whether declared up front via Content-Length or
// discovered while streaming.
var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// ErrTooManyRedirects is returned when a download chain exceeds the
// redirect cap.
var ErrTooManyRedirects = errors.New("too many redirects")

// RedirectBlockedError is returned when a redirect hop points at a URL
// the security policy rejects.
type RedirectBlockedError struct {
	URL string
	Err error
}

func (e *RedirectBlockedError) Error() string {
	return fmt.Sprintf("redirect to %s blocked: %v", e.URL, e.Err)
}

func (e *RedirectBlockedError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the origin answers with a non-2xx
// status.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}
