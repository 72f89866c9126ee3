package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// options configures the JSON-RPC HTTP client.
type options struct {
	name          string
	timeout       time.Duration
	transport     http.RoundTripper
	meterProvider metric.MeterProvider
	headers       map[string]string
	userAgent     string
}

// Option configures New.
type Option func(*options)

func newOptions(opts ...Option) options {
	o := options{
		name:    "rpc",
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithName labels the endpoint in metrics and spans.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithTimeout bounds a single RPC round trip. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithTransport replaces the pooled transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithHeaders adds headers to every request unless the request already sets
// them. Hosted RPC providers take API keys this way.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithUserAgent sets the User-Agent sent to the node.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}
