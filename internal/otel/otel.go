// Package otel exports the execution layer's events as OpenTelemetry spans.
// It attaches to the event bus at startup; with no endpoint configured the
// layer runs untraced.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/subrouter/internal/eventbus"
	events "github.com/hanpama/subrouter/internal/events"
	reqid "github.com/hanpama/subrouter/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("subrouter")}
	sub.register()

	return tp.Shutdown, nil
}

// spanKey pairs start/finish events. Sibling sub-queries of one client
// request share a request ID but target different subgraphs, so the key
// carries both.
type spanKey struct {
	rid      int64
	subgraph string
}

type subscriber struct {
	tracer     trace.Tracer
	localSpans sync.Map // spanKey -> trace.Span
	fetchSpans sync.Map // spanKey -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.LocalExecuteStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "subgraph.local.execute")
		span.SetAttributes(
			attribute.String("subgraph.name", e.Subgraph),
			attribute.String("graphql.operation.name", e.OperationName),
		)
		s.localSpans.Store(spanKey{rid, e.Subgraph}, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.LocalExecuteFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.localSpans.LoadAndDelete(spanKey{rid, e.Subgraph})
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", e.ErrorCount))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.FetchStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "subgraph.fetch")
		span.SetAttributes(
			attribute.String("subgraph.name", e.Subgraph),
			attribute.String("http.url", e.URL),
			attribute.Int("subgraph.fetch.attempt", e.Attempt),
		)
		s.fetchSpans.Store(spanKey{rid, e.Subgraph}, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.FetchFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.fetchSpans.LoadAndDelete(spanKey{rid, e.Subgraph})
		if !ok {
			return
		}
		span := v.(trace.Span)
		if e.Status != 0 {
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
		}
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.FetchRetry) {
		_, span := s.tracer.Start(ctx, "subgraph.fetch.retry")
		span.SetAttributes(
			attribute.String("subgraph.name", e.Subgraph),
			attribute.String("subgraph.retry.class", e.Class),
			attribute.String("subgraph.retry.delay", e.Delay.String()),
		)
		span.End()
	})
}
