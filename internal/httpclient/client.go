// Package httpclient provides an OTEL-instrumented *http.Client used as the JSON-RPC transport.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultDialKeepAlive         = 10 * time.Second
	defaultRequestTimeout        = 15 * time.Second
	defaultMaxIdleConns          = 0
	defaultMaxConnsPerHost       = 5
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	metricRequestCounter = "whitelist_rpc_requests_total"
)

// New creates an *http.Client whose transport is traced and counted per RPC
// endpoint.
func New(opts ...Option) (*http.Client, error) {
	o := newOptions(opts...)

	transport := o.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxIdleConns:          defaultMaxIdleConns,
			MaxConnsPerHost:       defaultMaxConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			ExpectContinueTimeout: defaultExpectContinueTimeout,
		}
	}

	meterProvider := o.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(
		"whitelist_rpc_client",
		metric.WithInstrumentationAttributes(attribute.String("endpoint", o.name)),
	)

	requests, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("JSON-RPC HTTP round trips by endpoint and status"),
	)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(o.headers)+1)
	for k, v := range o.headers {
		headers[k] = v
	}
	if o.userAgent != "" {
		headers["User-Agent"] = o.userAgent
	}

	counted := &countingTransport{
		next:     transport,
		requests: requests,
		endpoint: o.name,
		headers:  headers,
	}

	return &http.Client{
		Timeout: o.timeout,
		Transport: otelhttp.NewTransport(
			counted,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "rpc " + o.name + " " + r.Method
			}),
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}, nil
}

// countingTransport counts round trips and fills in default headers.
type countingTransport struct {
	next     http.RoundTripper
	requests metric.Int64Counter
	endpoint string
	headers  map[string]string
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
	}

	resp, err := t.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.requests.Add(req.Context(), 1, metric.WithAttributes(
		attribute.String("endpoint", t.endpoint),
		attribute.String("status", status),
	))

	return resp, err
}
