package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pesaflow/qbo-ui-api/internal/ports"
	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// CallbackServiceInterface defines the completion operation the handler depends on.
type CallbackServiceInterface interface {
	Complete(ctx context.Context, in ports.ExchangeInput) (*service.CallbackResult, error)
}

// CallbackHandlers handles the OAuth redirect from the QuickBooks consent
// screen.
type CallbackHandlers struct {
	Svc          CallbackServiceInterface
	CookieDomain string
	SessionTTL   time.Duration
	// RedirectTo is where the browser lands after a completed connection.
	RedirectTo string
	Logger     *slog.Logger
}

func (h *CallbackHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *CallbackHandlers) sessionTTL() time.Duration {
	if h.SessionTTL > 0 {
		return h.SessionTTL
	}
	return 12 * time.Hour
}

func (h *CallbackHandlers) redirectTo() string {
	if h.RedirectTo != "" {
		return h.RedirectTo
	}
	return "/"
}

// Callback completes the consent handshake.
// GET /auth/callback?code=<code>&state=<state>&realmId=<realm>.
// realmId is optional; its absence does not fail the exchange.
func (h *CallbackHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := ports.ExchangeInput{
		Code:    q.Get("code"),
		State:   q.Get("state"),
		RealmID: q.Get("realmId"),
	}
	if in.Code == "" {
		h.fail(w, r, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if in.State == "" {
		h.fail(w, r, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	result, err := h.Svc.Complete(r.Context(), in)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "callback completion failed", "error", err)
		h.fail(w, r, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "callback_failed",
			Err:     err,
		})
		return
	}

	// A duplicate replay carries no new session; keep whatever cookie the
	// browser already holds.
	if result.SessionID != "" {
		setSessionCookie(w, r, h.CookieDomain, result.SessionID, h.sessionTTL())
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":      string(result.Status),
			"message":     result.Message,
			"redirect_to": h.redirectTo(),
		})
		return
	}

	dest := h.redirectTo()
	u, parseErr := url.Parse(dest)
	if parseErr == nil {
		dq := u.Query()
		dq.Set("connection", string(result.Status))
		u.RawQuery = dq.Encode()
		dest = u.String()
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

func (h *CallbackHandlers) fail(w http.ResponseWriter, r *http.Request, p ErrorParams) {
	if wantsJSON(r) {
		WriteError(w, p)
		return
	}
	dest := h.redirectTo()
	if u, err := url.Parse(dest); err == nil {
		dq := u.Query()
		dq.Set("connection", "failed")
		dq.Set("reason", p.ErrCode)
		u.RawQuery = dq.Encode()
		dest = u.String()
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

// wantsJSON reports whether the client asked for a JSON response rather
// than a browser redirect.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
