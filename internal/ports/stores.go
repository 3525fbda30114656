package ports

import (
	"context"
	"errors"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
)

// ErrNotFound is returned by stores when a key is absent. Malformed stored
// values are treated the same way (fail soft): implementations log and
// report not-found rather than surfacing a decode error.
var ErrNotFound = errors.New("not found")

// SessionStore persists per-session state: the upstream TokenPair, the
// mirrored user identity, and the company-registry cache. The registry and
// active-company entries are display caches only, never a source of truth
// over a fresh upstream response.
type SessionStore interface {
	SaveTokens(ctx context.Context, sessionID string, pair auth.TokenPair) error
	Tokens(ctx context.Context, sessionID string) (auth.TokenPair, error)

	SaveUser(ctx context.Context, sessionID string, user auth.Identity) error
	User(ctx context.Context, sessionID string) (auth.Identity, error)

	SaveRegistry(ctx context.Context, sessionID string, reg company.Registry) error
	Registry(ctx context.Context, sessionID string) (company.Registry, error)

	// Clear removes the tokens, user, and registry entries for the session
	// as one atomic-in-effect operation; no partial-clear state is
	// observable afterward.
	Clear(ctx context.Context, sessionID string) error
}

// ErrAlreadyProcessed is returned by CallbackLedger.Record when the tuple was
// recorded before (by this process or another gateway instance).
var ErrAlreadyProcessed = errors.New("callback already processed")

// CallbackLedger durably records consumed OAuth callback tuples. It is the
// second, restart-surviving defense against re-processing a single-use
// authorization code; the in-process latch is the first.
type CallbackLedger interface {
	// Seen reports whether the tuple has already been recorded.
	Seen(ctx context.Context, in ExchangeInput) (bool, error)
	// Record marks the tuple consumed; ErrAlreadyProcessed when it lost the
	// race to an earlier Record.
	Record(ctx context.Context, in ExchangeInput) error
}
