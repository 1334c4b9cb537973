// Package retry holds the retry policy applied to remote subgraph fetches
// and the classification of fetch failures that decides whether a retry can
// help at all.
package retry

import (
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Class is the failure classification of one fetch attempt.
type Class int

const (
	// ClassTransport covers connection resets, timeouts and other failures
	// below the HTTP layer. Retryable.
	ClassTransport Class = iota
	// ClassServerError covers HTTP 5xx statuses. Retryable.
	ClassServerError
	// ClassClientError covers HTTP 4xx statuses. Never retried: the request
	// itself is at fault.
	ClassClientError
	// ClassGraphQL covers a well-formed 2xx payload whose errors list is
	// non-empty. Application errors, never retried.
	ClassGraphQL
	// ClassMalformed covers an unparseable response body. Retrying a
	// malformed response will not fix it.
	ClassMalformed
)

// Retryable reports whether another attempt can change the outcome.
func (c Class) Retryable() bool {
	return c == ClassTransport || c == ClassServerError
}

func (c Class) String() string {
	switch c {
	case ClassTransport:
		return "transport"
	case ClassServerError:
		return "server_error"
	case ClassClientError:
		return "client_error"
	case ClassGraphQL:
		return "graphql"
	case ClassMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ClassifyStatus maps a non-2xx HTTP status to a failure class.
func ClassifyStatus(code int) Class {
	if code >= 500 {
		return ClassServerError
	}
	return ClassClientError
}

// Policy is the process-wide retry configuration. It is loaded once at
// startup and immutable afterwards; per-call state lives in Schedule.
type Policy struct {
	// MaxAttempts is the total attempt count including the first one.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// Multiplier grows the delay after each retry.
	Multiplier float64
	// OverallTimeout bounds one fetch across all attempts. Applied only
	// when the caller's context has no deadline of its own. 0 disables it.
	OverallTimeout time.Duration
}

// Default mirrors the conservative defaults of the upstream router: two
// retries after the initial attempt.
var Default = Policy{
	MaxAttempts:    3,
	BaseDelay:      100 * time.Millisecond,
	Multiplier:     2,
	OverallTimeout: 30 * time.Second,
}

// Validate reports configuration errors. These are fatal at startup.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry: max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("retry: base delay must be positive, got %s", p.BaseDelay)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("retry: multiplier must be at least 1, got %g", p.Multiplier)
	}
	if p.OverallTimeout < 0 {
		return fmt.Errorf("retry: overall timeout must not be negative, got %s", p.OverallTimeout)
	}
	return nil
}

// NewSchedule creates the per-call retry schedule: an exponential backoff of
// BaseDelay * Multiplier^attempt, capped at MaxAttempts-1 retries. The
// randomization factor is zero so delays are deterministic and testable.
func (p Policy) NewSchedule() *Schedule {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()
	return &Schedule{bo: backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1))}
}

// Schedule decides, per failed attempt, whether to retry and after how long.
// Not safe for concurrent use; create one per fetch.
type Schedule struct {
	bo backoff.BackOff
}

// Next consumes one failure of the given class. It returns the delay before
// the next attempt, or false when the class is not retryable or the attempt
// budget is exhausted.
func (s *Schedule) Next(class Class) (time.Duration, bool) {
	if !class.Retryable() {
		return 0, false
	}
	d := s.bo.NextBackOff()
	if d == backoff.Stop {
		return 0, false
	}
	return d, true
}
