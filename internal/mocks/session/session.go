package session

// Package session contains simple hand-written test doubles for the session
// gateway ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.CallbackLedger = (*MemoryLedger)(nil)
	_ ports.Upstream       = (*FakeUpstream)(nil)
)

// MemorySessionStore is an in-memory ports.SessionStore for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	tokens   map[string]auth.TokenPair
	users    map[string]auth.Identity
	registry map[string]company.Registry
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		tokens:   make(map[string]auth.TokenPair),
		users:    make(map[string]auth.Identity),
		registry: make(map[string]company.Registry),
	}
}

func (s *MemorySessionStore) SaveTokens(_ context.Context, id string, pair auth.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id] = pair
	return nil
}

func (s *MemorySessionStore) Tokens(_ context.Context, id string) (auth.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.tokens[id]
	if !ok {
		return auth.TokenPair{}, ports.ErrNotFound
	}
	return pair, nil
}

func (s *MemorySessionStore) SaveUser(_ context.Context, id string, user auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = user
	return nil
}

func (s *MemorySessionStore) User(_ context.Context, id string) (auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return auth.Identity{}, ports.ErrNotFound
	}
	return user, nil
}

func (s *MemorySessionStore) SaveRegistry(_ context.Context, id string, reg company.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[id] = reg
	return nil
}

func (s *MemorySessionStore) Registry(_ context.Context, id string) (company.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registry[id]
	if !ok {
		return company.Registry{}, ports.ErrNotFound
	}
	return reg, nil
}

func (s *MemorySessionStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	delete(s.users, id)
	delete(s.registry, id)
	return nil
}

// MemoryLedger is an in-memory ports.CallbackLedger for tests.
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]bool)}
}

func (l *MemoryLedger) Seen(_ context.Context, in ports.ExchangeInput) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[in.Key()], nil
}

func (l *MemoryLedger) Record(_ context.Context, in ports.ExchangeInput) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[in.Key()] {
		return ports.ErrAlreadyProcessed
	}
	l.seen[in.Key()] = true
	return nil
}

// FakeUpstream is a func-field double for ports.Upstream with call counters.
// Unset funcs return zero-value successes.
type FakeUpstream struct {
	RegisterFunc   func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
	LoginFunc      func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	ExchangeFunc   func(ctx context.Context, ra ports.RequestAuth, in ports.ExchangeInput) (*ports.ExchangeResult, error)
	CompaniesFunc  func(ctx context.Context, ra ports.RequestAuth) (*ports.CompaniesResult, error)
	SetActiveFunc  func(ctx context.Context, ra ports.RequestAuth, companyID string) (*ports.SwitchResult, error)
	DisconnectFunc func(ctx context.Context, ra ports.RequestAuth, companyID string) (string, error)
	LogoutFunc     func(ctx context.Context, ra ports.RequestAuth) error
	FetchFunc      func(ctx context.Context, ra ports.RequestAuth, path string, query url.Values) (json.RawMessage, error)

	// Call counters, atomically updated so concurrent tests can assert on
	// them safely.
	ExchangeCalls  atomic.Int64
	CompaniesCalls atomic.Int64
	LogoutCalls    atomic.Int64
}

func (f *FakeUpstream) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, in)
	}
	return &ports.RegisterResult{}, nil
}

func (f *FakeUpstream) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, email, password)
	}
	return &ports.LoginResult{Connected: true}, nil
}

func (f *FakeUpstream) ExchangeCallback(
	ctx context.Context,
	ra ports.RequestAuth,
	in ports.ExchangeInput,
) (*ports.ExchangeResult, error) {
	f.ExchangeCalls.Add(1)
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, ra, in)
	}
	return &ports.ExchangeResult{}, nil
}

func (f *FakeUpstream) Companies(ctx context.Context, ra ports.RequestAuth) (*ports.CompaniesResult, error) {
	f.CompaniesCalls.Add(1)
	if f.CompaniesFunc != nil {
		return f.CompaniesFunc(ctx, ra)
	}
	return &ports.CompaniesResult{}, nil
}

func (f *FakeUpstream) SetActiveCompany(
	ctx context.Context,
	ra ports.RequestAuth,
	companyID string,
) (*ports.SwitchResult, error) {
	if f.SetActiveFunc != nil {
		return f.SetActiveFunc(ctx, ra, companyID)
	}
	return &ports.SwitchResult{}, nil
}

func (f *FakeUpstream) DisconnectCompany(ctx context.Context, ra ports.RequestAuth, companyID string) (string, error) {
	if f.DisconnectFunc != nil {
		return f.DisconnectFunc(ctx, ra, companyID)
	}
	return "", nil
}

func (f *FakeUpstream) Logout(ctx context.Context, ra ports.RequestAuth) error {
	f.LogoutCalls.Add(1)
	if f.LogoutFunc != nil {
		return f.LogoutFunc(ctx, ra)
	}
	return nil
}

func (f *FakeUpstream) Fetch(
	ctx context.Context,
	ra ports.RequestAuth,
	path string,
	query url.Values,
) (json.RawMessage, error) {
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx, ra, path, query)
	}
	return json.RawMessage(`{}`), nil
}
