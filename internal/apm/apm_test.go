package apm

import (
	"context"
	"errors"
	"testing"

	"github.com/fd1az/whitelist-dapp/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders("x-honeycomb-team=abc, api-key=k=v ,broken,=nokey")

	if len(got) != 2 {
		t.Fatalf("expected 2 headers, got %d: %v", len(got), got)
	}
	if got["x-honeycomb-team"] != "abc" {
		t.Errorf("unexpected team header %q", got["x-honeycomb-team"])
	}
	if got["api-key"] != "k=v" {
		t.Errorf("value must keep everything after the first '=', got %q", got["api-key"])
	}
}

func TestNewTraceProvider_UnknownProviderIsNoop(t *testing.T) {
	tp, err := NewTraceProvider(context.Background(), logger.NewNop(), Options{Provider: "nope"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop returned %v", err)
	}
}

func TestTracer_NoticeErrorOnNoopSpan(t *testing.T) {
	tracer := NewTracer("test")
	ctx, span := tracer.StartSpanFromContext(context.Background(), "op")
	span.NoticeError(errors.New("boom"))
	span.End()

	if tracer.SpanFromContext(ctx) == nil {
		t.Error("expected span wrapper from context")
	}
}
