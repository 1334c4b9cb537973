package executor

import (
	"context"
	"fmt"
)

// Runtime supplies field resolution and abstract-type resolution to the
// Executor.
//
// Contract:
//   - Resolve is called once per field occurrence, synchronously, in query
//     order. objectType is the parent GraphQL type name, source the parent
//     value (nil for root fields), args the coerced argument values.
//   - Returned errors become located GraphQL errors; if the field's type is
//     Non-Null the null is propagated to the nearest nullable ancestor per
//     the GraphQL spec.
//   - ResolveType must return the concrete object type name for values of
//     interface or union type.
//   - Implementations must be safe for concurrent use and must not mutate
//     source or args. One Executor may serve many operations at once.
type Runtime interface {
	Resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error)
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)
}

// LeafSerializer is optionally implemented by a Runtime to control how scalar
// and enum values are serialized. Without it, JSON-safe values pass through
// unchanged.
type LeafSerializer interface {
	SerializeLeaf(ctx context.Context, typeName string, value any) (any, error)
}

// ResolverFunc resolves one field on one source value.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// TypeResolverFunc names the concrete type of an abstract value.
type TypeResolverFunc func(value any) (string, error)

// Resolvers is a Runtime backed by a per-field resolver map. Fields without
// an explicit resolver fall back to a map lookup on the source value, which
// covers plain data objects and federation entity representations.
//
// Register everything before handing Resolvers to an Executor; the maps are
// not synchronized.
type Resolvers struct {
	fields map[string]ResolverFunc
	types  map[string]TypeResolverFunc
}

func NewResolvers() *Resolvers {
	return &Resolvers{
		fields: make(map[string]ResolverFunc),
		types:  make(map[string]TypeResolverFunc),
	}
}

// Field registers fn for objectType.field. It returns the receiver so
// registrations chain.
func (r *Resolvers) Field(objectType, field string, fn ResolverFunc) *Resolvers {
	r.fields[objectType+"."+field] = fn
	return r
}

// Type registers a concrete-type resolver for the abstract type name.
func (r *Resolvers) Type(abstractType string, fn TypeResolverFunc) *Resolvers {
	r.types[abstractType] = fn
	return r
}

func (r *Resolvers) Resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if fn, ok := r.fields[objectType+"."+field]; ok {
		return fn(ctx, source, args)
	}
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}
	if source == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("no resolver for %s.%s", objectType, field)
}

func (r *Resolvers) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if fn, ok := r.types[abstractType]; ok {
		return fn(value)
	}
	if m, ok := value.(map[string]any); ok {
		if tn, ok := m["__typename"].(string); ok {
			return tn, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type for %s", abstractType)
}
