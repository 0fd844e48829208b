package ssrn

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the SSRN client.
var (
	// ErrInvalidInput indicates the argument is neither a numeric id nor a URL.
	ErrInvalidInput = errors.New("not an SSRN id or URL")

	// ErrNotFound indicates SSRN has no abstract page for the id.
	ErrNotFound = errors.New("abstract not found on SSRN")

	// ErrRateLimited indicates SSRN answered 429 Too Many Requests.
	ErrRateLimited = errors.New("SSRN rate limit exceeded")

	// ErrNetworkError indicates a connectivity problem.
	ErrNetworkError = errors.New("network error communicating with SSRN")
)

// HTTPStatusError is returned for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("SSRN returned HTTP %d for %s", e.StatusCode, e.URL)
}

// Is lets errors.Is match the sentinel that corresponds to the status code.
func (e *HTTPStatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsNotFound returns true if the error indicates a missing abstract.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNetworkError returns true if the error came from the transport or the
// remote server rather than from the caller's input.
func IsNetworkError(err error) bool {
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr)
}
