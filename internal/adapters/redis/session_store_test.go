package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
	"github.com/pesaflow/qbo-ui-api/internal/testutil"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	return NewSessionStore(client, Options{TTL: time.Minute})
}

func TestSessionStore_TokenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pair := auth.TokenPair{Access: "acc-xyz", Refresh: "ref-xyz"}
	require.NoError(t, store.SaveTokens(ctx, "s1", pair))

	got, err := store.Tokens(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, pair, got)
}

func TestSessionStore_OverwriteTokens(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTokens(ctx, "s1", auth.TokenPair{Access: "old"}))
	require.NoError(t, store.SaveTokens(ctx, "s1", auth.TokenPair{Access: "new", Refresh: "r"}))

	got, err := store.Tokens(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Access)
}

func TestSessionStore_MissingTokens(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Tokens(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_MalformedValueIsNotFound(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, Options{TTL: time.Minute})
	ctx := context.Background()

	// Corrupt the stored value behind the store's back.
	require.NoError(t, client.Set(ctx, "sess:s1:tokens", "{not json", time.Minute).Err())

	_, err := store.Tokens(ctx, "s1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_ClearRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTokens(ctx, "s1", auth.TokenPair{Access: "a"}))
	require.NoError(t, store.SaveUser(ctx, "s1", auth.Identity{ID: "u1", Email: "u@example.com"}))
	require.NoError(t, store.SaveRegistry(ctx, "s1", company.Registry{
		Companies: []company.Company{{ID: "c1", Name: "Acme", IsActive: true}},
		ActiveID:  "c1",
	}))

	require.NoError(t, store.Clear(ctx, "s1"))

	_, err := store.Tokens(ctx, "s1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = store.User(ctx, "s1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = store.Registry(ctx, "s1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_RegistryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reg := company.Registry{
		Companies: []company.Company{
			{ID: "c1", Name: "Acme Ltd", RealmID: "9341", IsConnected: true, IsActive: true},
			{ID: "c2", Name: "Beta Ltd", RealmID: "9342", IsConnected: true},
		},
		ActiveID:  "c1",
		FetchedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveRegistry(ctx, "s1", reg))

	got, err := store.Registry(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, reg.ActiveID, got.ActiveID)
	require.Len(t, got.Companies, 2)
	assert.Equal(t, "Acme Ltd", got.Companies[0].Name)
	assert.True(t, got.Companies[0].IsActive)
}
