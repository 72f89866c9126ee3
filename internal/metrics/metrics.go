// Package metrics sets up the otel meter provider and the Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

func getReaders(ctx context.Context, cfg Config, registry *prometheus.Registry) ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
			if err != nil {
				return nil, fmt.Errorf("prometheus exporter: %w", err)
			}

			readers = append(readers, promExporter)
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}

			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("otlp metric exporter: %w", err)
			}

			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	return readers, nil
}

// NewMetricProvider builds a meter provider from options, installs it globally,
// and returns it with the registry Prometheus metrics are gathered from.
func NewMetricProvider(ctx context.Context, options ...OptionFn) (MetricProvider, *prometheus.Registry, error) {
	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	registry := prometheus.NewRegistry()

	readers, err := getReaders(ctx, cfg, registry)
	if err != nil {
		return nil, nil, err
	}

	metricsOps := []sdkmetric.Option{
		sdkmetric.WithResource(
			resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
		),
	}
	for _, reader := range readers {
		metricsOps = append(metricsOps, sdkmetric.WithReader(reader))
	}

	meterProvider := sdkmetric.NewMeterProvider(metricsOps...)
	otel.SetMeterProvider(meterProvider)

	return meterProvider, registry, nil
}

// Server exposes /metrics for a Prometheus registry.
type Server struct {
	server *http.Server
	addr   net.Addr
}

// ServePrometheusMetrics binds addr and serves the registry in the background.
// Binding errors are returned; serve errors after startup are dropped.
func ServePrometheusMetrics(addr string, registry *prometheus.Registry) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s := &Server{
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr(),
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return
		}
	}()

	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.addr
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
