package config

import "time"

// UpstreamConfig contains the fiscal backend client configuration.
type UpstreamConfig struct {
	// BaseURL is the root of the backend REST API, including the version
	// prefix (e.g., "https://api.example.com/api/v1").
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000/api/v1"`

	// Timeout bounds each backend request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to upstream configuration values.
func (u *UpstreamConfig) Sanitize() {
	if u.Timeout <= 0 {
		u.Timeout = 15 * time.Second
	}
}
