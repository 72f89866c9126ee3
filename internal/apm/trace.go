// Package apm wires OpenTelemetry tracing for the application.
package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans under a fixed instrumentation name.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
	SpanFromContext(ctx context.Context) Span
}

type openTracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by the global tracer provider.
func NewTracer(name string) Tracer {
	return &openTracer{
		otel.Tracer(name),
	}
}

func (t *openTracer) StartSpanFromContext(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, NewSpan(span)
}

func (t *openTracer) SpanFromContext(ctx context.Context) Span {
	return NewSpan(trace.SpanFromContext(ctx))
}
