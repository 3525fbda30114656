package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sessionmocks "github.com/pesaflow/qbo-ui-api/internal/mocks/session"
	"github.com/pesaflow/qbo-ui-api/internal/service"
)

// newTestRouter builds a full router backed by in-memory doubles. Shared by
// the handler tests in this package.
func newTestRouter(t *testing.T, up *sessionmocks.FakeUpstream) (http.Handler, *sessionmocks.MemorySessionStore) {
	t.Helper()

	store := sessionmocks.NewMemorySessionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Upstream: up, Store: store, Logger: logger,
	})
	require.NoError(t, err)

	callbacks, err := service.NewCallbackService(service.CallbackServiceOptions{
		Upstream: up, Store: store, Logger: logger, RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)

	companies, err := service.NewCompanyService(service.CompanyServiceOptions{
		Upstream: up, Store: store, Logger: logger,
	})
	require.NoError(t, err)

	panels, err := service.NewPanelService(service.PanelServiceOptions{
		Upstream: up, Store: store, Companies: companies, Logger: logger,
	})
	require.NoError(t, err)

	router := NewRouter(RouterServices{
		Auth:              auth,
		Callbacks:         callbacks,
		Companies:         companies,
		Panels:            panels,
		ConnectedRedirect: "/dashboard",
		Logger:            logger,
	})
	return router, store
}

func sessionCookie(id string) *http.Cookie {
	return &http.Cookie{Name: SessionCookieName, Value: id}
}
