package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pesaflow/qbo-ui-api/config"
	redisadapter "github.com/pesaflow/qbo-ui-api/internal/adapters/redis"
	"github.com/pesaflow/qbo-ui-api/internal/adapters/upstream"
	"github.com/pesaflow/qbo-ui-api/internal/data"
	"github.com/pesaflow/qbo-ui-api/internal/observability/metrics"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// ServiceContainer holds the constructed gateway services and their shared
// infrastructure.
type ServiceContainer struct {
	Auth      *service.AuthService
	Callbacks *service.CallbackService
	Companies *service.CompanyService
	Panels    *service.PanelService

	Upstream *upstream.Client
	Registry *prometheus.Registry
}

// BuildServicesOptions groups dependencies for BuildServices.
type BuildServicesOptions struct {
	Config *config.AppConfig
	Redis  goredis.UniversalClient
	// DB is optional; nil disables the durable callback ledger.
	DB     *sql.DB
	Logger *slog.Logger
}

// BuildServices wires the upstream client, stores, and services together.
func BuildServices(opts BuildServicesOptions) (*ServiceContainer, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var registry *prometheus.Registry
	var m *metrics.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(registry)
	}

	// The upstream client purges the gateway session when the backend
	// answers 401. The auth service owning that purge is built after the
	// client, so route the hook through a late-bound pointer.
	var authSvc *service.AuthService
	client, err := upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Unauthorized: func(ctx context.Context, sessionID string) {
			if authSvc != nil {
				authSvc.PurgeSession(ctx, sessionID)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build upstream client: %w", err)
	}

	store := redisadapter.NewSessionStore(opts.Redis, redisadapter.Options{
		Prefix: cfg.Session.KeyPrefix,
		TTL:    cfg.Session.TTL,
		Logger: logger,
	})

	var ledger ports.CallbackLedger
	if opts.DB != nil {
		ledger = data.NewCallbackLedger(opts.DB)
	}

	authSvc, err = service.NewAuthService(service.AuthServiceOptions{
		Upstream: client,
		Store:    store,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	callbackSvc, err := service.NewCallbackService(service.CallbackServiceOptions{
		Upstream:     client,
		Store:        store,
		Ledger:       ledger,
		Logger:       logger,
		Metrics:      m,
		MaxRetries:   cfg.Callback.MaxRetries,
		RetryBackoff: cfg.Callback.RetryBackoff,
	})
	if err != nil {
		return nil, fmt.Errorf("build callback service: %w", err)
	}

	companySvc, err := service.NewCompanyService(service.CompanyServiceOptions{
		Upstream: client,
		Store:    store,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("build company service: %w", err)
	}

	panelSvc, err := service.NewPanelService(service.PanelServiceOptions{
		Upstream:  client,
		Store:     store,
		Companies: companySvc,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build panel service: %w", err)
	}

	return &ServiceContainer{
		Auth:      authSvc,
		Callbacks: callbackSvc,
		Companies: companySvc,
		Panels:    panelSvc,
		Upstream:  client,
		Registry:  registry,
	}, nil
}
