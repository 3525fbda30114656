package httpx

import (
	"net/http"

	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// PanelHandlers proxies dashboard panel reads to the backend.
type PanelHandlers struct {
	Svc *service.PanelService
}

// Invoices serves GET /api/invoices.
func (h *PanelHandlers) Invoices(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.PanelInvoices)
}

// Customers serves GET /api/customers.
func (h *PanelHandlers) Customers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.PanelCustomers)
}

// CreditNotes serves GET /api/credit-notes.
func (h *PanelHandlers) CreditNotes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, service.PanelCreditNotes)
}

// InvoiceByID serves GET /api/invoices/{id}.
func (h *PanelHandlers) InvoiceByID(w http.ResponseWriter, r *http.Request) {
	h.serveItem(w, r, service.PanelInvoices)
}

// CustomerByID serves GET /api/customers/{id}.
func (h *PanelHandlers) CustomerByID(w http.ResponseWriter, r *http.Request) {
	h.serveItem(w, r, service.PanelCustomers)
}

// CreditNoteByID serves GET /api/credit-notes/{id}.
func (h *PanelHandlers) CreditNoteByID(w http.ResponseWriter, r *http.Request) {
	h.serveItem(w, r, service.PanelCreditNotes)
}

func (h *PanelHandlers) serve(w http.ResponseWriter, r *http.Request, panel string) {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrAuthRequired)
		return
	}

	raw, err := h.Svc.Fetch(r.Context(), sessionID, panel, r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteRawJSON(w, http.StatusOK, raw)
}

func (h *PanelHandlers) serveItem(w http.ResponseWriter, r *http.Request, panel string) {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrAuthRequired)
		return
	}

	raw, err := h.Svc.FetchItem(r.Context(), sessionID, panel, r.PathValue("id"), r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteRawJSON(w, http.StatusOK, raw)
}
