// Package remote fetches sub-queries from a subgraph over GraphQL-over-HTTP.
//
// The endpoint is the configured override, not necessarily the URL the
// supergraph schema embeds in its join__graph directive; that override is the
// point of this fetcher. Transient failures are retried per the configured
// policy, application-level GraphQL errors never are.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	eventbus "github.com/hanpama/subrouter/internal/eventbus"
	events "github.com/hanpama/subrouter/internal/events"
	retry "github.com/hanpama/subrouter/internal/retry"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
)

const applicationJSON = "application/json"

// Graph is the remote subgraph implementation. Construct once at startup;
// safe for concurrent use.
type Graph struct {
	name      subgraph.Name
	url       string
	policy    retry.Policy
	client    *http.Client
	propagate bool

	attempts atomic.Int64
	retries  atomic.Int64
	failures atomic.Int64
}

// New creates a fetcher for the subgraph at endpoint. Invalid endpoint or
// policy values are configuration errors and fail before serving begins.
func New(name subgraph.Name, endpoint string, policy retry.Policy, opts ...Option) (*Graph, error) {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("subgraph %s: invalid endpoint %q", name, endpoint)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("subgraph %s: %w", name, err)
	}
	client := o.Client
	if client == nil {
		client = &http.Client{CheckRedirect: redirectPolicy(o.MaxRedirects)}
	}
	return &Graph{
		name:      name,
		url:       endpoint,
		policy:    policy,
		client:    client,
		propagate: o.PropagateHeaders,
	}, nil
}

func (g *Graph) Name() subgraph.Name { return g.name }

// URL returns the endpoint the fetcher actually calls.
func (g *Graph) URL() string { return g.url }

// redirectPolicy allows up to max redirects, same host only.
func redirectPolicy(max int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return ErrTooManyRedirects
		}
		if req.URL.Hostname() != via[0].URL.Hostname() {
			return ErrRedirectDifferentHost
		}
		return nil
	}
}

// Execute serializes req once and POSTs it to the configured endpoint,
// retrying per policy on transport errors and retryable statuses. All
// failures fold into the returned response; Execute never panics and never
// returns nil.
func (g *Graph) Execute(ctx context.Context, req *subgraph.Request) *subgraph.Response {
	body, err := req.MarshalWire()
	if err != nil {
		return g.errorResponse(fmt.Errorf("subgraph %s: serialize request: %w", g.name, err), "SUBREQUEST_SERIALIZATION")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && g.policy.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.policy.OverallTimeout)
		defer cancel()
	}

	sched := g.policy.NewSchedule()
	for attempt := 0; ; attempt++ {
		g.attempts.Add(1)
		eventbus.Publish(ctx, events.FetchStart{Subgraph: g.name.String(), URL: g.url, Attempt: attempt})

		start := time.Now()
		res, status, err := g.doAttempt(ctx, body, req.Headers)
		eventbus.Publish(ctx, events.FetchFinish{
			Subgraph: g.name.String(),
			URL:      g.url,
			Attempt:  attempt,
			Status:   status,
			Err:      err,
			Duration: time.Since(start),
		})
		if err == nil {
			// GraphQL-level errors in a well-formed payload are application
			// errors: returned as-is, never retried.
			return res
		}

		if ctx.Err() != nil {
			// Canceled or timed out; do not retry further.
			g.failures.Add(1)
			return g.errorResponse(fmt.Errorf("subgraph %s: %w", g.name, ctx.Err()), "SUBREQUEST_HTTP_ERROR")
		}

		class := classify(err)
		delay, ok := sched.Next(class)
		if !ok {
			g.failures.Add(1)
			if class.Retryable() {
				exhausted := &RetryExhaustedError{
					Subgraph: g.name,
					URL:      g.url,
					Attempts: attempt + 1,
					Last:     err,
				}
				return g.errorResponse(exhausted, "SUBREQUEST_HTTP_ERROR")
			}
			code := "SUBREQUEST_HTTP_ERROR"
			if class == retry.ClassMalformed {
				code = "SUBREQUEST_MALFORMED_RESPONSE"
			}
			return g.errorResponse(err, code)
		}

		g.retries.Add(1)
		eventbus.Publish(ctx, events.FetchRetry{
			Subgraph: g.name.String(),
			URL:      g.url,
			Attempt:  attempt,
			Class:    class.String(),
			Delay:    delay,
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			g.failures.Add(1)
			return g.errorResponse(fmt.Errorf("subgraph %s: %w", g.name, ctx.Err()), "SUBREQUEST_HTTP_ERROR")
		case <-timer.C:
		}
	}
}

// doAttempt performs one HTTP round trip. A nil error means the response is
// returnable, GraphQL errors included. The int is the HTTP status when one
// was received, 0 otherwise.
func (g *Graph) doAttempt(ctx context.Context, body []byte, headers http.Header) (*subgraph.Response, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &TransportError{URL: g.url, Err: err}
	}
	if g.propagate && headers != nil {
		subgraph.PropagateHeaders(httpReq.Header, headers)
	}
	httpReq.Header.Set("Content-Type", applicationJSON)
	httpReq.Header.Set("Accept", applicationJSON)

	httpRes, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, ErrRedirectDifferentHost) || errors.Is(err, ErrTooManyRedirects) {
			return nil, 0, err
		}
		return nil, 0, &TransportError{URL: g.url, Err: err}
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return nil, httpRes.StatusCode, &HTTPStatusError{URL: g.url, Status: httpRes.StatusCode}
	}

	payload, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, httpRes.StatusCode, &TransportError{URL: g.url, Err: err}
	}

	res, err := subgraph.DecodeResponse(payload)
	if err != nil {
		return nil, httpRes.StatusCode, err
	}
	return res, httpRes.StatusCode, nil
}

func (g *Graph) errorResponse(err error, code string) *subgraph.Response {
	return subgraph.ErrorResponse(subgraph.Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code":    code,
			"service": g.name.String(),
		},
	})
}

// Stats is a snapshot of the fetcher's counters.
type Stats struct {
	Attempts int64
	Retries  int64
	Failures int64
}

func (g *Graph) Stats() Stats {
	return Stats{
		Attempts: g.attempts.Load(),
		Retries:  g.retries.Load(),
		Failures: g.failures.Load(),
	}
}
