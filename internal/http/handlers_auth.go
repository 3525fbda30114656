package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// AuthServiceInterface defines the auth operations the handlers depend on.
type AuthServiceInterface interface {
	Register(ctx context.Context, in ports.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (auth.Identity, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc AuthServiceInterface
	// Companies enriches /auth/status with the active company. Optional.
	Companies    *service.CompanyService
	CookieDomain string
	SessionTTL   time.Duration
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) sessionTTL() time.Duration {
	if h.SessionTTL > 0 {
		return h.SessionTTL
	}
	return 12 * time.Hour
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Register handles account creation.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_credentials",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	result, err := h.Svc.Register(r.Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setSessionCookie(w, r, h.CookieDomain, result.SessionID, h.sessionTTL())
	WriteJSON(w, http.StatusCreated, map[string]any{
		"user":    identityPayload(result.User),
		"message": result.Message,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a gateway session.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_credentials",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	result, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setSessionCookie(w, r, h.CookieDomain, result.SessionID, h.sessionTTL())

	payload := map[string]any{
		"needs_connection": result.NeedsConnection,
		"user":             identityPayload(result.User),
	}
	if result.NeedsConnection {
		payload["auth_url"] = result.AuthURL
	}
	if result.Company != nil {
		payload["company"] = result.Company
	}
	if result.Message != "" {
		payload["message"] = result.Message
	}
	WriteJSON(w, http.StatusOK, payload)
}

// Logout invalidates the session upstream and clears the cookie. Always
// succeeds from the client's point of view.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := sessionIDFromRequest(r); sessionID != "" {
		if err := h.Svc.Logout(r.Context(), sessionID); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}

	clearSessionCookie(w, r, h.CookieDomain)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Status reports whether the request carries a live session.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	user, err := h.Svc.Session(r.Context(), sessionID)
	if err != nil {
		// Session is invalid or expired, clear the cookie.
		clearSessionCookie(w, r, h.CookieDomain)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	payload := map[string]any{
		"authenticated": true,
		"user":          identityPayload(user),
	}
	if h.Companies != nil {
		// Best effort; the dashboard restores without a company when the
		// registry cannot be loaded.
		if active, aerr := h.Companies.Active(r.Context(), sessionID); aerr == nil && active != nil {
			payload["active_company"] = active
		}
	}
	WriteJSON(w, http.StatusOK, payload)
}

func identityPayload(user auth.Identity) map[string]any {
	return map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}
}
