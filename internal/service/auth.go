package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/observability/metrics"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// ErrAuthRequired is returned by operations that need an authenticated
// session when none is present.
var ErrAuthRequired = errors.New("authentication required")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Upstream ports.Upstream
	Store    ports.SessionStore
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// AuthService orchestrates login, registration, and logout against the
// upstream backend, and owns the forced-logout path taken on upstream 401s.
type AuthService struct {
	upstream ports.Upstream
	store    ports.SessionStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewAuthService constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
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
	return &AuthService{
		upstream: opts.Upstream,
		store:    opts.Store,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// LoginResult is the outcome of a credential exchange. When NeedsConnection
// is true the caller must send the user to AuthURL to connect a QuickBooks
// company before the dashboard is usable.
type LoginResult struct {
	SessionID       string
	NeedsConnection bool
	AuthURL         string
	User            auth.Identity
	Company         *company.Company
	Message         string
}

// Login exchanges credentials for upstream tokens and establishes a gateway
// session around them.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	res, err := s.upstream.Login(ctx, email, password)
	if err != nil {
		s.metrics.Login("error")
		return nil, fmt.Errorf("login: %w", err)
	}

	sessionID := newSessionID()
	// The login endpoint reports no identity payload; mirror the email so
	// the dashboard has something to restore on reload.
	user := auth.Identity{Email: email}

	if saveErr := s.establish(ctx, sessionID, res.Tokens, user); saveErr != nil {
		return nil, saveErr
	}

	if res.Company != nil {
		reg := company.Resolve([]company.Company{*res.Company}, res.Company.ID)
		if cacheErr := s.store.SaveRegistry(ctx, sessionID, reg); cacheErr != nil {
			s.logger.WarnContext(ctx, "cache initial company failed", "error", cacheErr)
		}
	}

	if res.Connected {
		s.metrics.Login("ok")
	} else {
		s.metrics.Login("needs_connection")
	}

	return &LoginResult{
		SessionID:       sessionID,
		NeedsConnection: !res.Connected,
		AuthURL:         res.AuthURL,
		User:            user,
		Company:         res.Company,
		Message:         res.Message,
	}, nil
}

// RegisterResult is the outcome of account creation.
type RegisterResult struct {
	SessionID string
	User      auth.Identity
	Message   string
}

// Register creates an account upstream and establishes a session with the
// returned tokens.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*RegisterResult, error) {
	if in.Email == "" {
		return nil, errors.New("email is required")
	}
	if in.Password == "" {
		return nil, errors.New("password is required")
	}

	res, err := s.upstream.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	sessionID := newSessionID()
	if saveErr := s.establish(ctx, sessionID, res.Tokens, res.User); saveErr != nil {
		return nil, saveErr
	}

	return &RegisterResult{
		SessionID: sessionID,
		User:      res.User,
		Message:   res.Message,
	}, nil
}

// Logout invalidates the upstream session best-effort, then clears the
// gateway session unconditionally. A network failure upstream is logged and
// swallowed: the user must never keep local tokens after logging out.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	tokens, err := s.store.Tokens(ctx, sessionID)
	if err == nil && !tokens.IsZero() {
		ra := ports.RequestAuth{Bearer: tokens.Access, SessionID: sessionID}
		if logoutErr := s.upstream.Logout(ctx, ra); logoutErr != nil {
			s.logger.WarnContext(ctx, "upstream logout failed", "error", logoutErr)
		}
	}

	if clearErr := s.store.Clear(ctx, sessionID); clearErr != nil {
		return fmt.Errorf("clear session: %w", clearErr)
	}
	return nil
}

// Session returns the mirrored identity for an authenticated session, or
// ErrAuthRequired when the session has no usable tokens.
func (s *AuthService) Session(ctx context.Context, sessionID string) (auth.Identity, error) {
	if sessionID == "" {
		return auth.Identity{}, ErrAuthRequired
	}
	tokens, err := s.store.Tokens(ctx, sessionID)
	if err != nil || tokens.IsZero() {
		return auth.Identity{}, ErrAuthRequired
	}
	user, err := s.store.User(ctx, sessionID)
	if err != nil {
		// Tokens without an identity mirror still count as a session.
		return auth.Identity{}, nil
	}
	return user, nil
}

// PurgeSession drops all session state. Wired as the upstream client's
// unauthorized hook: a 401 is terminal for the session (no silent refresh).
func (s *AuthService) PurgeSession(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "purge session failed", "session_id", sessionID, "error", err)
		return
	}
	s.metrics.SessionPurge()
	s.logger.InfoContext(ctx, "session purged after upstream 401", "session_id", sessionID)
}

func (s *AuthService) establish(
	ctx context.Context,
	sessionID string,
	tokens auth.TokenPair,
	user auth.Identity,
) error {
	if err := s.store.SaveTokens(ctx, sessionID, tokens); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	if err := s.store.SaveUser(ctx, sessionID, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// newSessionID creates a cryptographically secure random session ID.
func newSessionID() string {
	return uuid.New().String()
}
