package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      *service.AuthService
	Callbacks *service.CallbackService
	Companies *service.CompanyService
	Panels    *service.PanelService

	CookieDomain string
	SessionTTL   time.Duration
	// ConnectedRedirect is where /auth/callback sends the browser after a
	// completed QuickBooks connection.
	ConnectedRedirect string

	// MetricsRegistry, when set, exposes GET /metrics.
	MetricsRegistry *prometheus.Registry

	Logger *slog.Logger
}

// NewRouter creates and configures the gateway HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Companies:    services.Companies,
		CookieDomain: services.CookieDomain,
		SessionTTL:   services.SessionTTL,
		Logger:       logger,
	}
	callbackHandlers := &CallbackHandlers{
		Svc:          services.Callbacks,
		CookieDomain: services.CookieDomain,
		SessionTTL:   services.SessionTTL,
		RedirectTo:   services.ConnectedRedirect,
		Logger:       logger,
	}
	companyHandlers := &CompanyHandlers{Svc: services.Companies}
	panelHandlers := &PanelHandlers{Svc: services.Panels}

	requireSession := RequireSession(func(ctx context.Context, sessionID string) error {
		_, err := services.Auth.Session(ctx, sessionID)
		return err
	})

	mux.HandleFunc("POST /auth/register", authHandlers.Register)
	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)
	mux.HandleFunc("GET /auth/callback", callbackHandlers.Callback)

	mux.Handle("GET /api/companies", requireSession(http.HandlerFunc(companyHandlers.List)))
	mux.Handle("POST /api/companies/set-active", requireSession(http.HandlerFunc(companyHandlers.SetActive)))
	mux.Handle("POST /api/companies/{id}/disconnect", requireSession(http.HandlerFunc(companyHandlers.Disconnect)))

	mux.Handle("GET /api/invoices", requireSession(http.HandlerFunc(panelHandlers.Invoices)))
	mux.Handle("GET /api/invoices/{id}", requireSession(http.HandlerFunc(panelHandlers.InvoiceByID)))
	mux.Handle("GET /api/customers", requireSession(http.HandlerFunc(panelHandlers.Customers)))
	mux.Handle("GET /api/customers/{id}", requireSession(http.HandlerFunc(panelHandlers.CustomerByID)))
	mux.Handle("GET /api/credit-notes", requireSession(http.HandlerFunc(panelHandlers.CreditNotes)))
	mux.Handle("GET /api/credit-notes/{id}", requireSession(http.HandlerFunc(panelHandlers.CreditNoteByID)))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.MetricsRegistry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(services.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	return mux
}
