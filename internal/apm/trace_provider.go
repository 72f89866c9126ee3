package apm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/whitelist-dapp/internal/logger"
)

// Provider names a span exporter backend.
type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "empty"
)

// TraceProvider is a running tracer provider that must be stopped on shutdown.
type TraceProvider interface {
	Stop() error
}

// Options configures NewTraceProvider.
type Options struct {
	Provider    Provider
	ServiceName string
	Endpoint    string
	Headers     map[string]string
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// NewTraceProvider builds the exporter named in opts and installs it as the global tracer provider.
// Unknown providers fall back to a no-op provider.
func NewTraceProvider(ctx context.Context, log logger.LoggerInterface, opts Options) (TraceProvider, error) {
	exp, err := newExporter(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", opts.Provider, err)
	}
	if exp == nil {
		log.Warn(ctx, "trace provider not found, tracing disabled", "provider", opts.Provider)
		return emptyTraceProvider{}, nil
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.ServiceName),
			attribute.String("otel.provider", string(opts.Provider)),
		))
	if err != nil {
		// Schema conflicts between the default resource and ours are not fatal.
		rsrc = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "tracing initialized", "provider", opts.Provider, "endpoint", opts.Endpoint)

	return &traceProvider{tp}, nil
}

func newExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, error) {
	switch opts.Provider {
	case ZipkinProvider:
		return zipkin.New(opts.Endpoint)
	case OTLPGRPCProvider:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(opts.Endpoint),
			otlptracegrpc.WithHeaders(opts.Headers),
		)
	case OTLPHTTPProvider:
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(opts.Endpoint),
			otlptracehttp.WithHeaders(opts.Headers),
		)
	case ConsoleProvider:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

// ParseHeaders parses "k1=v1,k2=v2" into a header map. Malformed pairs are skipped.
func ParseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		headers[k] = v
	}
	return headers
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
