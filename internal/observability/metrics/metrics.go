// Package metrics holds the Prometheus instruments for the session gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups all gateway counters. Construct with New and share one
// instance; a nil *Metrics is safe to call.
type Metrics struct {
	logins            *prometheus.CounterVec
	callbackExchanges *prometheus.CounterVec
	callbackRetries   prometheus.Counter
	sessionPurges     prometheus.Counter
}

// New registers all instruments on reg. Pass prometheus.DefaultRegisterer in
// production; tests use a fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pesaflow_logins_total",
			Help: "Login attempts by result (ok, needs_connection, error).",
		}, []string{"result"}),
		callbackExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pesaflow_callback_exchanges_total",
			Help: "OAuth callback completions by outcome (completed, duplicate, failed).",
		}, []string{"outcome"}),
		callbackRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "pesaflow_callback_retries_total",
			Help: "Retries issued for transient OAuth state errors during callback exchange.",
		}),
		sessionPurges: factory.NewCounter(prometheus.CounterOpts{
			Name: "pesaflow_session_purges_total",
			Help: "Sessions purged after an upstream 401.",
		}),
	}
}

// Login records a login attempt outcome.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// CallbackExchange records a callback completion outcome.
func (m *Metrics) CallbackExchange(outcome string) {
	if m == nil {
		return
	}
	m.callbackExchanges.WithLabelValues(outcome).Inc()
}

// CallbackRetry records one retry of the exchange call.
func (m *Metrics) CallbackRetry() {
	if m == nil {
		return
	}
	m.callbackRetries.Inc()
}

// SessionPurge records a forced logout caused by an upstream 401.
func (m *Metrics) SessionPurge() {
	if m == nil {
		return
	}
	m.sessionPurges.Inc()
}
