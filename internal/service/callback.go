package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/observability/metrics"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// ErrMissingParams is returned when the redirect arrived without the
// required code or state parameters. No exchange call is made in that case.
var ErrMissingParams = errors.New("missing code or state parameters")

// CallbackStatus is the terminal state of a completion attempt.
type CallbackStatus string

const (
	// StatusCompleted means the exchange succeeded and session state was
	// applied.
	StatusCompleted CallbackStatus = "completed"
	// StatusDuplicate means the tuple was already processed; existing
	// session state was left untouched.
	StatusDuplicate CallbackStatus = "duplicate"
)

// CallbackResult is the outcome of a successful (or duplicate) completion.
type CallbackResult struct {
	Status    CallbackStatus
	SessionID string
	User      auth.Identity
	Company   *company.Company
	Message   string
}

// CallbackServiceOptions groups dependencies for CallbackService.
type CallbackServiceOptions struct {
	Upstream ports.Upstream
	Store    ports.SessionStore
	// Ledger is the durable second defense against replaying a consumed
	// authorization code. Optional: nil disables it.
	Ledger  ports.CallbackLedger
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// MaxRetries bounds re-issues of the exchange on transient state
	// errors. Defaults to 3 (so 4 attempts total).
	MaxRetries int
	// RetryBackoff is the base delay; attempt n waits n times this.
	// Defaults to 1500ms.
	RetryBackoff time.Duration
}

// CallbackService completes the OAuth redirect handshake. The authorization
// code is single-use by the identity provider's contract, so the exchange
// must be issued at most once per (code, state, realmId) tuple no matter how
// many times the redirect page re-fires. Three defenses stack here: the
// in-process latch (singleflight plus a completed-outcome cache), the
// durable ledger, and the upstream's own duplicate flag.
type CallbackService struct {
	upstream ports.Upstream
	store    ports.SessionStore
	ledger   ports.CallbackLedger
	logger   *slog.Logger
	metrics  *metrics.Metrics

	maxRetries int
	backoff    time.Duration

	flight    singleflight.Group
	completed sync.Map // tuple key -> *CallbackResult
}

// NewCallbackService constructs a CallbackService.
func NewCallbackService(opts CallbackServiceOptions) (*CallbackService, error) {
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
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 1500 * time.Millisecond
	}
	return &CallbackService{
		upstream:   opts.Upstream,
		store:      opts.Store,
		ledger:     opts.Ledger,
		logger:     logger,
		metrics:    opts.Metrics,
		maxRetries: maxRetries,
		backoff:    backoff,
	}, nil
}

// Complete processes one redirect. A missing realmId is forwarded as the
// empty string rather than rejected; a missing code or state fails fast
// without any network call.
func (s *CallbackService) Complete(ctx context.Context, in ports.ExchangeInput) (*CallbackResult, error) {
	if in.Code == "" || in.State == "" {
		return nil, ErrMissingParams
	}

	key := in.Key()

	// Fast path: this tuple already completed in this process.
	if v, ok := s.completed.Load(key); ok {
		return s.replay(v), nil
	}

	// Concurrent invocations of the same tuple collapse onto one exchange;
	// the group key survives re-invocation because it is derived from the
	// captured parameters, not from any per-call state.
	v, err, _ := s.flight.Do(key, func() (any, error) {
		return s.complete(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	res, ok := v.(*CallbackResult)
	if !ok {
		return nil, errors.New("unexpected completion result type")
	}
	return res, nil
}

// replay returns a duplicate-flavored copy of an already-completed outcome
// without re-applying any side effects.
func (s *CallbackService) replay(v any) *CallbackResult {
	prev, ok := v.(*CallbackResult)
	if !ok {
		return &CallbackResult{Status: StatusDuplicate, Message: "connection already completed"}
	}
	dup := *prev
	dup.Status = StatusDuplicate
	dup.Message = "connection already completed"
	return &dup
}

func (s *CallbackService) complete(ctx context.Context, in ports.ExchangeInput) (*CallbackResult, error) {
	key := in.Key()

	if v, ok := s.completed.Load(key); ok {
		return s.replay(v), nil
	}

	if s.ledger != nil {
		seen, err := s.ledger.Seen(ctx, in)
		if err != nil {
			// Ledger trouble must not block a legitimate first exchange;
			// the upstream duplicate flag still covers replays.
			s.logger.WarnContext(ctx, "callback ledger lookup failed", "error", err)
		} else if seen {
			s.metrics.CallbackExchange("duplicate")
			res := &CallbackResult{Status: StatusDuplicate, Message: "connection already completed"}
			s.completed.Store(key, res)
			return res, nil
		}
	}

	res, err := s.exchangeWithRetry(ctx, in)
	if err != nil {
		s.metrics.CallbackExchange("failed")
		return nil, err
	}

	out, err := s.apply(ctx, in, res)
	if err != nil {
		return nil, err
	}

	s.record(ctx, in)
	s.completed.Store(key, out)
	s.metrics.CallbackExchange(string(out.Status))
	return out, nil
}

// exchangeWithRetry issues the exchange, re-issuing the same captured tuple
// on transient state/CSRF errors. The retry absorbs the race between the
// redirect landing and session-cookie propagation upstream; it is never a
// retry of a genuinely consumed code, which comes back non-retryable.
// Retries are strictly sequential.
func (s *CallbackService) exchangeWithRetry(
	ctx context.Context,
	in ports.ExchangeInput,
) (*ports.ExchangeResult, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		res, err := s.upstream.ExchangeCallback(ctx, ports.RequestAuth{}, in)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !IsRetryableOAuthError(err) || attempt >= s.maxRetries {
			break
		}

		s.metrics.CallbackRetry()
		delay := time.Duration(attempt+1) * s.backoff
		s.logger.WarnContext(ctx, "callback exchange failed, retrying",
			"attempt", attempt+1, "delay", delay, "error", err)
		if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, fmt.Errorf("could not verify your login session: %w", lastErr)
}

// apply stores the new session state for a non-duplicate exchange. Duplicate
// responses are a successful no-op: whatever user and company state already
// exists must not be touched.
func (s *CallbackService) apply(
	ctx context.Context,
	in ports.ExchangeInput,
	res *ports.ExchangeResult,
) (*CallbackResult, error) {
	if res.Duplicate {
		return &CallbackResult{Status: StatusDuplicate, Message: "connection already completed"}, nil
	}

	sessionID := newSessionID()
	if err := s.store.SaveTokens(ctx, sessionID, res.Tokens); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	if err := s.store.SaveUser(ctx, sessionID, res.User); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.cacheRegistry(ctx, sessionID, res)

	msg := res.Message
	if msg == "" {
		msg = "connection completed"
	}
	return &CallbackResult{
		Status:    StatusCompleted,
		SessionID: sessionID,
		User:      res.User,
		Company:   res.Company,
		Message:   msg,
	}, nil
}

// cacheRegistry refreshes the company list with the fresh tokens, forcing
// the newly connected company active. Failures degrade to a single-entry
// snapshot; the next dashboard load refetches anyway.
func (s *CallbackService) cacheRegistry(ctx context.Context, sessionID string, res *ports.ExchangeResult) {
	ra := ports.RequestAuth{Bearer: res.Tokens.Access, SessionID: sessionID}

	if listing, err := s.upstream.Companies(ctx, ra); err == nil {
		activeID := listing.ActiveCompanyID
		if res.Company != nil {
			activeID = res.Company.ID
		}
		reg := company.Resolve(listing.Companies, activeID)
		if res.Company != nil {
			if setErr := reg.SetActive(res.Company.ID); setErr != nil {
				s.logger.WarnContext(ctx, "connected company missing from listing",
					"company_id", res.Company.ID)
			}
		}
		if saveErr := s.store.SaveRegistry(ctx, sessionID, reg); saveErr != nil {
			s.logger.WarnContext(ctx, "cache company registry failed", "error", saveErr)
		}
		return
	} else {
		s.logger.WarnContext(ctx, "refresh companies after callback failed", "error", err)
	}

	if res.Company != nil {
		reg := company.Resolve([]company.Company{*res.Company}, res.Company.ID)
		if saveErr := s.store.SaveRegistry(ctx, sessionID, reg); saveErr != nil {
			s.logger.WarnContext(ctx, "cache connected company failed", "error", saveErr)
		}
	}
}

// record marks the tuple consumed in the ledger. Losing the insert race to
// another instance is fine; the exchange already succeeded here.
func (s *CallbackService) record(ctx context.Context, in ports.ExchangeInput) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, in); err != nil && !errors.Is(err, ports.ErrAlreadyProcessed) {
		s.logger.WarnContext(ctx, "record callback exchange failed", "error", err)
	}
}

// IsRetryableOAuthError classifies transient OAuth failures by substring.
// The backend exposes no structured error code, so state/CSRF/expiry
// problems are recognized from the message text; keep the patterns in one
// place so a structured code can replace them later.
func IsRetryableOAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"state", "csrf", "oauth"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
