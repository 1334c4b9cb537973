package remote

import (
	"errors"
	"fmt"

	retry "github.com/hanpama/subrouter/internal/retry"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
)

// Redirect violations. They surface wrapped in *url.Error from the HTTP
// client and are never retried.
var (
	ErrRedirectDifferentHost = errors.New("redirect points to a different host")
	ErrTooManyRedirects      = errors.New("too many redirects")
)

// TransportError is a failure below the HTTP layer: connection refused,
// reset, timeout. Retryable.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is a non-2xx response. 5xx is retryable, 4xx is not.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("subgraph at %s responded with status %d", e.URL, e.Status)
}

// RetryExhaustedError is the terminal failure after the attempt budget is
// spent on retryable errors.
type RetryExhaustedError struct {
	Subgraph subgraph.Name
	URL      string
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("subgraph %s unreachable at %s after %d attempts: %v",
		e.Subgraph, e.URL, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// classify maps an attempt failure to its retry class.
func classify(err error) retry.Class {
	var statusErr *HTTPStatusError
	switch {
	case errors.Is(err, subgraph.ErrMalformedResponse):
		return retry.ClassMalformed
	case errors.Is(err, ErrRedirectDifferentHost), errors.Is(err, ErrTooManyRedirects):
		return retry.ClassClientError
	case errors.As(err, &statusErr):
		return retry.ClassifyStatus(statusErr.Status)
	default:
		return retry.ClassTransport
	}
}
