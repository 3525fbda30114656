package redis

// Package redis provides Redis-based adapters for the session gateway.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

const (
	suffixTokens   = ":tokens"
	suffixUser     = ":user"
	suffixRegistry = ":registry"
)

// SessionStore persists per-session gateway state (token pair, mirrored user
// identity, company-registry cache) in Redis. Each entry lives under
// "<prefix><sessionID><suffix>" with the session TTL; Clear removes all of a
// session's keys in one DEL so no partial-clear state is observable.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Options configures a SessionStore.
type Options struct {
	// Prefix defaults to "sess:".
	Prefix string
	// TTL bounds every session entry; defaults to 12h.
	TTL time.Duration
	// Logger records malformed-value recoveries. Optional.
	Logger *slog.Logger
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient, opts Options) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "sess:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// SaveTokens overwrites the stored token pair. Token contents are opaque and
// not validated.
func (s *SessionStore) SaveTokens(ctx context.Context, sessionID string, pair auth.TokenPair) error {
	return s.set(ctx, sessionID, suffixTokens, pair)
}

// Tokens returns the stored token pair, or ports.ErrNotFound when absent or
// malformed. A malformed stored value never surfaces as a decode error.
func (s *SessionStore) Tokens(ctx context.Context, sessionID string) (auth.TokenPair, error) {
	var pair auth.TokenPair
	if err := s.get(ctx, sessionID, suffixTokens, &pair); err != nil {
		return auth.TokenPair{}, err
	}
	return pair, nil
}

// SaveUser mirrors the upstream identity for restore-on-reload.
func (s *SessionStore) SaveUser(ctx context.Context, sessionID string, user auth.Identity) error {
	return s.set(ctx, sessionID, suffixUser, user)
}

// User returns the mirrored identity.
func (s *SessionStore) User(ctx context.Context, sessionID string) (auth.Identity, error) {
	var user auth.Identity
	if err := s.get(ctx, sessionID, suffixUser, &user); err != nil {
		return auth.Identity{}, err
	}
	return user, nil
}

// SaveRegistry caches the company-registry snapshot. Display cache only.
func (s *SessionStore) SaveRegistry(ctx context.Context, sessionID string, reg company.Registry) error {
	return s.set(ctx, sessionID, suffixRegistry, reg)
}

// Registry returns the cached snapshot.
func (s *SessionStore) Registry(ctx context.Context, sessionID string) (company.Registry, error) {
	var reg company.Registry
	if err := s.get(ctx, sessionID, suffixRegistry, &reg); err != nil {
		return company.Registry{}, err
	}
	return reg, nil
}

// Clear removes every entry for the session with a single DEL. A user
// identity must never survive a cleared token pair.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	keys := []string{
		s.key(sessionID, suffixTokens),
		s.key(sessionID, suffixUser),
		s.key(sessionID, suffixRegistry),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SessionStore) key(sessionID, suffix string) string {
	return s.prefix + sessionID + suffix
}

func (s *SessionStore) set(ctx context.Context, sessionID, suffix string, v any) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session value: %w", err)
	}
	return s.client.Set(ctx, s.key(sessionID, suffix), data, s.ttl).Err()
}

func (s *SessionStore) get(ctx context.Context, sessionID, suffix string, dst any) error {
	if sessionID == "" {
		return ports.ErrNotFound
	}
	key := s.key(sessionID, suffix)
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.ErrNotFound
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if unmarshalErr := json.Unmarshal([]byte(data), dst); unmarshalErr != nil {
		// Fail soft: a corrupt stored value behaves like an absent one.
		s.logger.WarnContext(ctx, "discarding malformed session value",
			"key", key, "error", unmarshalErr)
		return ports.ErrNotFound
	}
	return nil
}
