package remote

import "net/http"

// Options configures the remote fetcher.
//
// Defaults:
// - MaxRedirects:     10, same-host only
// - PropagateHeaders: true
// - Client:           a dedicated http.Client enforcing the redirect rules
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	// Client issues the HTTP requests. When nil a client with the redirect
	// policy below is created. A supplied client is used as-is, including
	// its own redirect behavior.
	Client *http.Client

	// MaxRedirects bounds redirect following. Redirects to a different host
	// are always refused; a GraphQL upstream redirecting cross-host is
	// treated as a configuration problem.
	MaxRedirects int

	// PropagateHeaders forwards the originating request's headers to the
	// subgraph, minus the hop-by-hop set.
	PropagateHeaders bool
}

// Option mutates Options. Use the WithX helpers below.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		MaxRedirects:     10,
		PropagateHeaders: true,
	}
}

func WithHTTPClient(c *http.Client) Option { return func(o *Options) { o.Client = c } }
func WithMaxRedirects(n int) Option        { return func(o *Options) { o.MaxRedirects = n } }
func WithHeaderPropagation(enabled bool) Option {
	return func(o *Options) { o.PropagateHeaders = enabled }
}
