package config

import "time"

// SessionConfig contains gateway session configuration.
type SessionConfig struct {
	// TTL is how long session state lives in Redis and how long the
	// session cookie is valid.
	TTL time.Duration `env:"TTL" envDefault:"12h"`

	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"sess:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 12 * time.Hour
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "sess:"
	}
}

// CallbackConfig contains OAuth callback completion configuration.
type CallbackConfig struct {
	// MaxRetries bounds exchange re-issues on transient state errors.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`

	// RetryBackoff is the base delay between exchange attempts; attempt n
	// waits n times this.
	RetryBackoff time.Duration `env:"RETRY_BACKOFF" envDefault:"1500ms"`

	// ConnectedRedirect is where the browser lands after a completed
	// QuickBooks connection.
	ConnectedRedirect string `env:"CONNECTED_REDIRECT" envDefault:"/"`
}

// Sanitize applies guardrails to callback configuration values.
func (c *CallbackConfig) Sanitize() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 1500 * time.Millisecond
	}
	if c.ConnectedRedirect == "" {
		c.ConnectedRedirect = "/"
	}
}
