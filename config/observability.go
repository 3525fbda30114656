package config

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	// MetricsEnabled exposes Prometheus metrics on GET /metrics.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}
