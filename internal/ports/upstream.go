package ports

// Package ports defines interfaces (hexagonal ports) for the session gateway.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
)

// RequestAuth carries per-call credentials for upstream requests. A zero
// value means an anonymous request (login, register, callback exchange).
type RequestAuth struct {
	// Bearer is the upstream access token attached as an Authorization header.
	Bearer string
	// SessionID identifies the gateway session on whose behalf the call is
	// made; it is handed to the unauthorized hook on a 401.
	SessionID string
}

// RegisterInput carries the fields for account creation.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterResult is the upstream response to a successful registration.
type RegisterResult struct {
	User    auth.Identity
	Tokens  auth.TokenPair
	Message string
}

// LoginResult is the upstream response to a credential exchange. When
// Connected is false the user has no usable QuickBooks connection yet and
// must be sent to AuthURL to begin the consent flow.
type LoginResult struct {
	Connected bool
	AuthURL   string
	Company   *company.Company
	Tokens    auth.TokenPair
	Message   string
}

// ExchangeInput groups the OAuth redirect parameters forwarded to the
// upstream callback endpoint. RealmID may legitimately be empty.
type ExchangeInput struct {
	Code    string `json:"code"`
	State   string `json:"state"`
	RealmID string `json:"realmId"`
}

// Key returns the identity of the (code, state, realmId) tuple for
// deduplication purposes.
func (in ExchangeInput) Key() string { return in.Code + "|" + in.State + "|" + in.RealmID }

// ExchangeResult is the upstream response to a callback exchange. Duplicate
// means the code was already consumed and the response carries no new
// user/company/token side effects to apply.
type ExchangeResult struct {
	Duplicate bool
	User      auth.Identity
	Company   *company.Company
	Tokens    auth.TokenPair
	Message   string
}

// CompaniesResult is the upstream company listing plus its active pointer.
type CompaniesResult struct {
	Companies       []company.Company
	ActiveCompanyID string
}

// SwitchResult is the upstream response to an active-company change.
type SwitchResult struct {
	ActiveCompany *company.Company
	Message       string
}

// Upstream is the client port for the fiscal backend REST API. Every method
// issues a single HTTP call; non-2xx responses surface as *upstream.Error
// with a normalized human-readable message.
type Upstream interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ExchangeCallback(ctx context.Context, ra RequestAuth, in ExchangeInput) (*ExchangeResult, error)
	Companies(ctx context.Context, ra RequestAuth) (*CompaniesResult, error)
	SetActiveCompany(ctx context.Context, ra RequestAuth, companyID string) (*SwitchResult, error)
	DisconnectCompany(ctx context.Context, ra RequestAuth, companyID string) (string, error)
	Logout(ctx context.Context, ra RequestAuth) error

	// Fetch forwards a scoped, read-only panel request (invoices, customers,
	// credit notes) and returns the upstream JSON body verbatim.
	Fetch(ctx context.Context, ra RequestAuth, path string, query url.Values) (json.RawMessage, error)
}
