// Package subgraph defines the request/response model exchanged between a
// federated router's query planner and a single subgraph, together with the
// dispatch surface (Subgraph, Registry) the planner calls into.
package subgraph

import (
	"context"
	"fmt"
	"sort"
)

// Name identifies a subgraph declared by the supergraph schema's join__Graph
// enum (e.g. PRODUCT, REVIEW, USER). The set of valid names is closed and
// known at configuration load time.
type Name string

func (n Name) String() string { return string(n) }

// Subgraph answers sub-queries routed to a single federated graph. The two
// implementations are the in-process local executor and the remote HTTP
// fetcher; which one serves a given name is resolved once at startup.
//
// Execute never returns a Go error: every failure mode is folded into the
// response's errors list so that one misbehaving subgraph cannot crash the
// serving process. Implementations must be safe for concurrent use.
type Subgraph interface {
	Name() Name
	Execute(ctx context.Context, req *Request) *Response
}

// Registry maps subgraph names to their configured Subgraph implementation.
// It is built once at startup and read-only afterwards.
type Registry struct {
	known  map[Name]struct{}
	graphs map[Name]Subgraph
}

// NewRegistry creates a registry restricted to the given set of names,
// normally the names declared by the supergraph schema.
func NewRegistry(known []Name) *Registry {
	k := make(map[Name]struct{}, len(known))
	for _, n := range known {
		k[n] = struct{}{}
	}
	return &Registry{known: k, graphs: make(map[Name]Subgraph)}
}

// Add registers g. Registering a name the supergraph does not declare is a
// configuration error and reported before serving begins.
func (r *Registry) Add(g Subgraph) error {
	name := g.Name()
	if _, ok := r.known[name]; !ok {
		return fmt.Errorf("subgraph %q is not present in the supergraph schema", name)
	}
	if _, dup := r.graphs[name]; dup {
		return fmt.Errorf("subgraph %q registered twice", name)
	}
	r.graphs[name] = g
	return nil
}

// Get returns the subgraph registered under name.
func (r *Registry) Get(name Name) (Subgraph, bool) {
	g, ok := r.graphs[name]
	return g, ok
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []Name {
	out := make([]Name, 0, len(r.graphs))
	for n := range r.graphs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
