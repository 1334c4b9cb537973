// Package local executes sub-queries in process, without a network hop.
//
// A Graph rebuilds its schema instance on every call through a Builder
// supplied by the integrator. The rebuild trades throughput for isolation:
// no state can leak between requests, and a schema hot-swapped by the
// integrator takes effect immediately. Callers who want caching wrap the
// Builder with a memoizing decorator; the core never caches.
package local

import (
	"context"
	"fmt"
	"time"

	eventbus "github.com/hanpama/subrouter/internal/eventbus"
	events "github.com/hanpama/subrouter/internal/events"
	executor "github.com/hanpama/subrouter/internal/executor"
	language "github.com/hanpama/subrouter/internal/language"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
)

// Instance is one freshly built, queryable schema: the validated schema
// document plus the runtime that resolves its fields. It lives for a single
// Execute call.
type Instance struct {
	Schema  *language.Schema
	Runtime executor.Runtime
}

// Builder constructs a fresh Instance. It takes no per-request input; the
// result must be a pure function of process-wide configuration. Builders are
// called concurrently and must be safe for that; lazy one-time setup of
// expensive state belongs behind a sync.Once inside the builder.
type Builder interface {
	Build() (*Instance, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func() (*Instance, error)

func (f BuilderFunc) Build() (*Instance, error) { return f() }

// SDLBuilder returns a Builder that parses and validates sdl on every call
// and pairs it with runtime.
func SDLBuilder(sdl string, runtime executor.Runtime) Builder {
	return BuilderFunc(func() (*Instance, error) {
		sch, err := language.LoadSchema("local", sdl)
		if err != nil {
			return nil, err
		}
		return &Instance{Schema: sch, Runtime: runtime}, nil
	})
}

// SchemaBuildError reports a Builder failure: invalid schema or resolver
// wiring. It surfaces inside the response, never as a crash.
type SchemaBuildError struct {
	Subgraph subgraph.Name
	Err      error
}

func (e *SchemaBuildError) Error() string {
	return fmt.Sprintf("subgraph %s: schema build failed: %v", e.Subgraph, e.Err)
}

func (e *SchemaBuildError) Unwrap() error { return e.Err }

// Graph is the in-process subgraph implementation.
type Graph struct {
	name    subgraph.Name
	builder Builder
}

func New(name subgraph.Name, builder Builder) *Graph {
	return &Graph{name: name, builder: builder}
}

func (g *Graph) Name() subgraph.Name { return g.name }

// Execute builds a fresh schema instance and runs the sub-query against it.
// Every failure mode, including a panicking builder or resolver, becomes an
// errors entry on the response.
func (g *Graph) Execute(ctx context.Context, req *subgraph.Request) (res *subgraph.Response) {
	start := time.Now()
	eventbus.Publish(ctx, events.LocalExecuteStart{
		Subgraph:      g.name.String(),
		OperationName: req.OperationName,
	})
	defer func() {
		if r := recover(); r != nil {
			res = subgraph.ErrorResponse(subgraph.Error{
				Message: fmt.Sprintf("subgraph %s: panic during execution: %v", g.name, r),
			})
		}
		eventbus.Publish(ctx, events.LocalExecuteFinish{
			Subgraph:      g.name.String(),
			OperationName: req.OperationName,
			ErrorCount:    len(res.Errors),
			Duration:      time.Since(start),
		})
	}()

	inst, err := g.builder.Build()
	if err != nil {
		buildErr := &SchemaBuildError{Subgraph: g.name, Err: err}
		return subgraph.ErrorResponse(subgraph.Error{Message: buildErr.Error()})
	}

	doc, gqlErrs := language.LoadQuery(inst.Schema, req.Query)
	if len(gqlErrs) > 0 {
		out := make([]subgraph.Error, len(gqlErrs))
		for i, ge := range gqlErrs {
			out[i] = subgraph.Error{Message: ge.Message}
		}
		return subgraph.ErrorResponse(out...)
	}

	result := executor.New(inst.Schema, inst.Runtime).
		ExecuteRequest(ctx, doc, req.OperationName, req.ExecutionVariables(), nil)
	return toResponse(result)
}

// toResponse converts an executor result into the sub-query response shape.
// The data map is shared, not copied; both representations are plain JSON
// value trees and the executor result is not reused.
func toResponse(result *executor.ExecutionResult) *subgraph.Response {
	res := &subgraph.Response{Data: result.Data}
	if len(result.Errors) > 0 {
		res.Errors = make([]subgraph.Error, len(result.Errors))
		for i, e := range result.Errors {
			res.Errors[i] = subgraph.Error{
				Message:    e.Message,
				Path:       []any(e.Path),
				Extensions: e.Extensions,
			}
		}
	}
	return res
}
