package httpx

import (
	"errors"
	"net/http"

	"github.com/pesaflow/qbo-ui-api/internal/adapters/upstream"
	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// writeServiceError maps service-layer failures onto HTTP responses. Upstream
// HTTP errors pass their status and normalized message through; everything
// else collapses to a small set of gateway statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAuthRequired), errors.Is(err, upstream.ErrUnauthorized):
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
	case errors.Is(err, service.ErrMissingParams):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_params", Err: err})
	case errors.Is(err, service.ErrNoActiveCompany):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "no_active_company", Err: err})
	default:
		var upErr *upstream.Error
		if errors.As(err, &upErr) {
			WriteError(w, ErrorParams{Code: upErr.Status, ErrCode: "upstream_error", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "gateway_error", Err: err})
	}
}
