package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/observability/metrics"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// CompanyServiceOptions groups dependencies for CompanyService.
type CompanyServiceOptions struct {
	Upstream ports.Upstream
	Store    ports.SessionStore
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// CompanyService manages the per-session company registry: which QuickBooks
// companies the user can see and which one is active. The server is the
// source of truth; the cached snapshot only has to converge, and concurrent
// switches resolve last-write-wins.
type CompanyService struct {
	upstream ports.Upstream
	store    ports.SessionStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(opts CompanyServiceOptions) (*CompanyService, error) {
	if opts.Upstream == nil {
		return nil, errors.New("Upstream is required")
	}
	if opts.Store == nil {
		return nil, errors.New("SessionStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyService{
		upstream: opts.Upstream,
		store:    opts.Store,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

func (s *CompanyService) auth(ctx context.Context, sessionID string) (ports.RequestAuth, error) {
	tokens, err := s.store.Tokens(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.RequestAuth{}, ErrAuthRequired
		}
		return ports.RequestAuth{}, fmt.Errorf("load tokens: %w", err)
	}
	if tokens.IsZero() {
		return ports.RequestAuth{}, ErrAuthRequired
	}
	return ports.RequestAuth{Bearer: tokens.Access, SessionID: sessionID}, nil
}

// Refresh fetches the company list from the server and rebuilds the cached
// registry snapshot.
func (s *CompanyService) Refresh(ctx context.Context, sessionID string) (*company.Registry, error) {
	ra, err := s.auth(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	listing, err := s.upstream.Companies(ctx, ra)
	if err != nil {
		return nil, fmt.Errorf("fetch companies: %w", err)
	}

	reg := company.Resolve(listing.Companies, listing.ActiveCompanyID)
	if saveErr := s.store.SaveRegistry(ctx, sessionID, reg); saveErr != nil {
		s.logger.WarnContext(ctx, "cache company registry failed", "error", saveErr)
	}
	return &reg, nil
}

// Registry returns the cached snapshot, refreshing from the server when no
// snapshot exists yet.
func (s *CompanyService) Registry(ctx context.Context, sessionID string) (*company.Registry, error) {
	reg, err := s.store.Registry(ctx, sessionID)
	if err == nil {
		return &reg, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return s.Refresh(ctx, sessionID)
}

// Active returns the active company from the cached snapshot, if any.
func (s *CompanyService) Active(ctx context.Context, sessionID string) (*company.Company, error) {
	reg, err := s.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return reg.Active(), nil
}

// Switch makes companyID the active company. The cached snapshot is only
// rewritten after the server confirms; on failure the previous active
// company stays in place.
func (s *CompanyService) Switch(ctx context.Context, sessionID, companyID string) (*company.Registry, error) {
	if companyID == "" {
		return nil, errors.New("company id is required")
	}
	ra, err := s.auth(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res, err := s.upstream.SetActiveCompany(ctx, ra, companyID)
	if err != nil {
		return nil, fmt.Errorf("set active company: %w", err)
	}

	activeID := companyID
	if res.ActiveCompany != nil {
		activeID = res.ActiveCompany.ID
	}

	reg, err := s.store.Registry(ctx, sessionID)
	if err != nil {
		// No snapshot to rewrite; rebuild from the server.
		return s.Refresh(ctx, sessionID)
	}
	if setErr := reg.SetActive(activeID); setErr != nil {
		// The confirmed company is not in the stale snapshot; refetch.
		return s.Refresh(ctx, sessionID)
	}
	if saveErr := s.store.SaveRegistry(ctx, sessionID, reg); saveErr != nil {
		s.logger.WarnContext(ctx, "cache company registry failed", "error", saveErr)
	}
	return &reg, nil
}

// Disconnect revokes the QuickBooks connection for companyID and then
// refetches the list unconditionally, since the server may have promoted a
// different company to active.
func (s *CompanyService) Disconnect(ctx context.Context, sessionID, companyID string) (*company.Registry, string, error) {
	if companyID == "" {
		return nil, "", errors.New("company id is required")
	}
	ra, err := s.auth(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	msg, err := s.upstream.DisconnectCompany(ctx, ra, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("disconnect company: %w", err)
	}

	reg, err := s.Refresh(ctx, sessionID)
	if err != nil {
		return nil, msg, fmt.Errorf("refresh after disconnect: %w", err)
	}
	return reg, msg, nil
}
