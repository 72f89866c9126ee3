package metrics

// Provider names a metric reader backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otlp-grpc"
)

// Config configures NewMetricProvider.
type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

// ProviderCfg describes one reader.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// NewOtelCollectorConfig returns a reader pushing to an OTLP gRPC collector.
func NewOtelCollectorConfig(url string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  headers,
		Insecure: insecure,
	}
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithServiceName(name string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = name
		return config
	}
}

// WithPrometheus adds the pull-based Prometheus reader.
func WithPrometheus() OptionFn {
	return WithProviderConfig(ProviderCfg{Provider: PrometheusProvider})
}
