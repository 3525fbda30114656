package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// ErrNoActiveCompany is returned when panel data is requested before any
// company connection exists.
var ErrNoActiveCompany = errors.New("no active company selected")

// Panel names map directly to backend collection paths.
const (
	PanelInvoices    = "invoices"
	PanelCustomers   = "customers"
	PanelCreditNotes = "credit-notes"
)

// PanelServiceOptions groups dependencies for PanelService.
type PanelServiceOptions struct {
	Upstream  ports.Upstream
	Store     ports.SessionStore
	Companies *CompanyService
	Logger    *slog.Logger
}

// PanelService proxies dashboard panel reads (invoices, customers, credit
// notes) to the backend, scoped to the session's active company. Responses
// pass through untouched; the gateway adds auth and tenancy, nothing else.
type PanelService struct {
	upstream  ports.Upstream
	store     ports.SessionStore
	companies *CompanyService
	logger    *slog.Logger
}

// NewPanelService constructs a PanelService.
func NewPanelService(opts PanelServiceOptions) (*PanelService, error) {
	if opts.Upstream == nil {
		return nil, errors.New("Upstream is required")
	}
	if opts.Store == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Companies == nil {
		return nil, errors.New("CompanyService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PanelService{
		upstream:  opts.Upstream,
		store:     opts.Store,
		companies: opts.Companies,
		logger:    logger,
	}, nil
}

var panelPaths = map[string]string{
	PanelInvoices:    "/invoices/",
	PanelCustomers:   "/customers/",
	PanelCreditNotes: "/credit-notes/",
}

// KnownPanel reports whether name is a proxied panel.
func KnownPanel(name string) bool {
	_, ok := panelPaths[name]
	return ok
}

// Fetch retrieves one panel's listing for the session's active company.
// Client query parameters (pagination, search) are forwarded; company_id is
// always overwritten with the active company so a stale or forged parameter
// cannot cross tenants.
func (s *PanelService) Fetch(ctx context.Context, sessionID, panel string, query url.Values) (json.RawMessage, error) {
	path, ok := panelPaths[panel]
	if !ok {
		return nil, fmt.Errorf("unknown panel %q", panel)
	}
	return s.fetch(ctx, sessionID, panel, path, query)
}

// FetchItem retrieves a single panel record by id, scoped the same way as
// Fetch.
func (s *PanelService) FetchItem(ctx context.Context, sessionID, panel, id string, query url.Values) (json.RawMessage, error) {
	path, ok := panelPaths[panel]
	if !ok {
		return nil, fmt.Errorf("unknown panel %q", panel)
	}
	if id == "" {
		return nil, fmt.Errorf("%s id is required", panel)
	}
	return s.fetch(ctx, sessionID, panel, path+url.PathEscape(id)+"/", query)
}

func (s *PanelService) fetch(ctx context.Context, sessionID, panel, path string, query url.Values) (json.RawMessage, error) {
	tokens, err := s.store.Tokens(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrAuthRequired
		}
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	if tokens.IsZero() {
		return nil, ErrAuthRequired
	}

	active, err := s.companies.Active(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveCompany
	}

	fwd := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			fwd.Add(k, v)
		}
	}
	fwd.Set("company_id", active.ID)

	ra := ports.RequestAuth{Bearer: tokens.Access, SessionID: sessionID}
	raw, err := s.upstream.Fetch(ctx, ra, path, fwd)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", panel, err)
	}
	return raw, nil
}
