package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTimeout matches every *TimeoutError.
var ErrTimeout = errors.New("request timed out")

// errRequestTimeout is the context cause set by FetchAPI's own deadline; it
// tells a timeout apart from a cancellation by the caller.
var errRequestTimeout = errors.New("transport: request deadline reached")

// APIError is the structured form of a non-2xx response.
// Data holds the decoded JSON body, or nil when the body was not JSON.
type APIError struct {
	Status int
	Data   any
}

func (e *APIError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("api error %d (%s): %v", e.Status, http.StatusText(e.Status), e.Data)
	}
	return fmt.Sprintf("api error %d (%s)", e.Status, http.StatusText(e.Status))
}

// TimeoutError is returned when a request exceeded Opts.Timeout.
type TimeoutError struct {
	Message string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string { return e.Message }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// IsRedirecting reports whether err is a 401/403 the transport already acted
// upon by navigating away. Callers render a neutral state instead of an
// error message.
func IsRedirecting(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
