package httpx

import (
	"errors"
	"net/http"

	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// CompanyHandlers provides HTTP handlers for company registry operations.
// All routes require an authenticated session.
type CompanyHandlers struct {
	Svc *service.CompanyService
}

// List returns the session's companies and the active pointer.
// GET /api/companies. Pass refresh=1 to bypass the cached snapshot.
func (h *CompanyHandlers) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrAuthRequired)
		return
	}

	if r.URL.Query().Get("refresh") != "" {
		registry, refreshErr := h.Svc.Refresh(r.Context(), sessionID)
		if refreshErr != nil {
			writeServiceError(w, refreshErr)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"companies":         registry.Companies,
			"active_company_id": registry.ActiveID,
		})
		return
	}

	registry, err := h.Svc.Registry(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"companies":         registry.Companies,
		"active_company_id": registry.ActiveID,
	})
}

type setActiveRequest struct {
	CompanyID string `json:"company_id"`
}

// SetActive switches the active company.
// POST /api/companies/set-active.
func (h *CompanyHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrAuthRequired)
		return
	}

	var req setActiveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_company_id",
			Err:     errors.New("company_id is required"),
		})
		return
	}

	registry, err := h.Svc.Switch(r.Context(), sessionID, req.CompanyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"companies":         registry.Companies,
		"active_company_id": registry.ActiveID,
		"active_company":    registry.Active(),
	})
}

// Disconnect revokes a company's QuickBooks connection.
// POST /api/companies/{id}/disconnect.
func (h *CompanyHandlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrAuthRequired)
		return
	}

	companyID := r.PathValue("id")
	if companyID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_company_id",
			Err:     errors.New("company id is required"),
		})
		return
	}

	registry, msg, err := h.Svc.Disconnect(r.Context(), sessionID, companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"message":           msg,
		"companies":         registry.Companies,
		"active_company_id": registry.ActiveID,
	})
}
