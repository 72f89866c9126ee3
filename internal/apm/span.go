package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is the subset of trace.Span the application uses.
type Span interface {
	SetAttributes(values ...attribute.KeyValue)
	AddEvent(name string, options ...trace.EventOption)
	NoticeError(err error)
	SetOK(description string)
	SpanContext() trace.SpanContext
	End(options ...trace.SpanEndOption)
}

type traceSpan struct {
	span trace.Span
}

// NewSpan wraps an otel span.
func NewSpan(span trace.Span) Span {
	return &traceSpan{span}
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	t.span.SetAttributes(values...)
}

func (t *traceSpan) AddEvent(name string, options ...trace.EventOption) {
	t.span.AddEvent(name, options...)
}

// NoticeError records err and marks the span failed.
func (t *traceSpan) NoticeError(err error) {
	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, err.Error())
}

func (t *traceSpan) SetOK(description string) {
	t.span.SetStatus(codes.Ok, description)
}

func (t *traceSpan) SpanContext() trace.SpanContext {
	return t.span.SpanContext()
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}
