package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	sessionmocks "github.com/pesaflow/qbo-ui-api/internal/mocks/session"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

func freshExchange() *ports.ExchangeResult {
	return &ports.ExchangeResult{
		User:    auth.Identity{Email: "user@example.com"},
		Company: &company.Company{ID: "co-1", Name: "Acme Ltd", IsConnected: true},
		Tokens:  auth.TokenPair{Access: "acc-1", Refresh: "ref-1"},
		Message: "QuickBooks connected",
	}
}

func newCallbackService(t *testing.T, opts CallbackServiceOptions) *CallbackService {
	t.Helper()
	if opts.Store == nil {
		opts.Store = sessionmocks.NewMemorySessionStore()
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Millisecond
	}
	svc, err := NewCallbackService(opts)
	require.NoError(t, err)
	return svc
}

func TestCallbackService_Complete_Success(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return freshExchange(), nil
		},
		CompaniesFunc: func(_ context.Context, _ ports.RequestAuth) (*ports.CompaniesResult, error) {
			return &ports.CompaniesResult{
				Companies: []company.Company{
					{ID: "co-1", Name: "Acme Ltd", IsConnected: true},
					{ID: "co-2", Name: "Beta LLC", IsConnected: true, IsActive: true},
				},
			}, nil
		},
	}
	store := sessionmocks.NewMemorySessionStore()
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up, Store: store})

	ctx := context.Background()
	result, err := svc.Complete(ctx, ports.ExchangeInput{Code: "code-1", State: "state-1", RealmID: "realm-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "user@example.com", result.User.Email)

	tokens, err := store.Tokens(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", tokens.Access)

	// The freshly connected company wins over any stale active flag from
	// the listing.
	reg, err := store.Registry(ctx, result.SessionID)
	require.NoError(t, err)
	require.NotNil(t, reg.Active())
	assert.Equal(t, "co-1", reg.Active().ID)
	assert.Len(t, reg.Companies, 2)
}

func TestCallbackService_Complete_MissingParams(t *testing.T) {
	up := &sessionmocks.FakeUpstream{}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	_, err := svc.Complete(context.Background(), ports.ExchangeInput{State: "state-1"})
	assert.ErrorIs(t, err, ErrMissingParams)

	_, err = svc.Complete(context.Background(), ports.ExchangeInput{Code: "code-1"})
	assert.ErrorIs(t, err, ErrMissingParams)

	assert.Equal(t, int64(0), up.ExchangeCalls.Load())
}

func TestCallbackService_Complete_EmptyRealmIDAccepted(t *testing.T) {
	var seenRealm string
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, in ports.ExchangeInput) (*ports.ExchangeResult, error) {
			seenRealm = in.RealmID
			return freshExchange(), nil
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	result, err := svc.Complete(context.Background(), ports.ExchangeInput{Code: "code-1", State: "state-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "", seenRealm)
}

func TestCallbackService_Complete_ConcurrentInvocationsExchangeOnce(t *testing.T) {
	release := make(chan struct{})
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			<-release
			return freshExchange(), nil
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	in := ports.ExchangeInput{Code: "code-1", State: "state-1", RealmID: "realm-1"}

	const callers = 8
	results := make([]*CallbackResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Complete(context.Background(), in)
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight exchange.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), up.ExchangeCalls.Load())

	completed := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		if results[i].Status == StatusCompleted {
			completed++
		}
	}
	// Callers that shared the in-flight result all see the completed
	// outcome; none of them observes an error.
	assert.GreaterOrEqual(t, completed, 1)
}

func TestCallbackService_Complete_SecondCallIsDuplicate(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return freshExchange(), nil
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	in := ports.ExchangeInput{Code: "code-1", State: "state-1", RealmID: "realm-1"}
	ctx := context.Background()

	first, err := svc.Complete(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, first.Status)

	second, err := svc.Complete(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, second.Status)
	assert.Equal(t, first.SessionID, second.SessionID)

	assert.Equal(t, int64(1), up.ExchangeCalls.Load())
}

func TestCallbackService_Complete_UpstreamDuplicateIsSuccess(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return &ports.ExchangeResult{Duplicate: true}, nil
		},
	}
	store := sessionmocks.NewMemorySessionStore()
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up, Store: store})

	result, err := svc.Complete(context.Background(), ports.ExchangeInput{Code: "code-1", State: "state-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, result.Status)
	assert.Empty(t, result.SessionID)
}

func TestCallbackService_Complete_LedgerShortCircuits(t *testing.T) {
	up := &sessionmocks.FakeUpstream{}
	ledger := sessionmocks.NewMemoryLedger()
	in := ports.ExchangeInput{Code: "code-1", State: "state-1", RealmID: "realm-1"}
	require.NoError(t, ledger.Record(context.Background(), in))

	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up, Ledger: ledger})

	result, err := svc.Complete(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, result.Status)
	assert.Equal(t, int64(0), up.ExchangeCalls.Load())
}

func TestCallbackService_Complete_RecordsInLedger(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return freshExchange(), nil
		},
	}
	ledger := sessionmocks.NewMemoryLedger()
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up, Ledger: ledger})

	in := ports.ExchangeInput{Code: "code-1", State: "state-1", RealmID: "realm-1"}
	_, err := svc.Complete(context.Background(), in)
	require.NoError(t, err)

	seen, err := ledger.Seen(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestCallbackService_Complete_RetriesTransientStateErrors(t *testing.T) {
	attempts := 0
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("Invalid or expired state parameter")
			}
			return freshExchange(), nil
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	result, err := svc.Complete(context.Background(), ports.ExchangeInput{Code: "code-1", State: "state-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 3, attempts)
}

func TestCallbackService_Complete_RetryExhaustion(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return nil, errors.New("CSRF check failed")
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up, MaxRetries: 3})

	_, err := svc.Complete(context.Background(), ports.ExchangeInput{Code: "code-1", State: "state-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "login session")
	assert.Contains(t, err.Error(), "CSRF check failed")
	assert.Equal(t, int64(4), up.ExchangeCalls.Load())
}

func TestCallbackService_Complete_NonRetryableFailsImmediately(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return nil, errors.New("authorization code already redeemed")
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	_, err := svc.Complete(context.Background(), ports.ExchangeInput{Code: "code-1", State: "state-1"})

	require.Error(t, err)
	assert.Equal(t, int64(1), up.ExchangeCalls.Load())
}

func TestCallbackService_Complete_FailedExchangeIsNotLatched(t *testing.T) {
	attempts := 0
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("backend unreachable")
			}
			return freshExchange(), nil
		},
	}
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up})

	in := ports.ExchangeInput{Code: "code-1", State: "state-1"}
	_, err := svc.Complete(context.Background(), in)
	require.Error(t, err)

	// A failed exchange must not poison the tuple; the next attempt runs.
	result, err := svc.Complete(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
}

func TestCallbackService_Complete_CompaniesFailureFallsBackToSnapshot(t *testing.T) {
	up := &sessionmocks.FakeUpstream{
		ExchangeFunc: func(_ context.Context, _ ports.RequestAuth, _ ports.ExchangeInput) (*ports.ExchangeResult, error) {
			return freshExchange(), nil
		},
		CompaniesFunc: func(_ context.Context, _ ports.RequestAuth) (*ports.CompaniesResult, error) {
			return nil, errors.New("backend unreachable")
		},
	}
	store := sessionmocks.NewMemorySessionStore()
	svc := newCallbackService(t, CallbackServiceOptions{Upstream: up, Store: store})

	ctx := context.Background()
	result, err := svc.Complete(ctx, ports.ExchangeInput{Code: "code-1", State: "state-1"})

	require.NoError(t, err)
	reg, err := store.Registry(ctx, result.SessionID)
	require.NoError(t, err)
	require.Len(t, reg.Companies, 1)
	assert.Equal(t, "co-1", reg.ActiveID)
}

func TestIsRetryableOAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"state mismatch", errors.New("Invalid State parameter"), true},
		{"csrf", errors.New("csrf token rejected"), true},
		{"oauth", errors.New("OAuth session not found"), true},
		{"network", errors.New("connection refused"), false},
		{"consumed code", errors.New("code already redeemed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableOAuthError(tt.err))
		})
	}
}
