package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	sessionmocks "github.com/pesaflow/qbo-ui-api/internal/mocks/session"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

func seedHTTPSession(t *testing.T, store *sessionmocks.MemorySessionStore, sessionID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveTokens(ctx, sessionID, auth.TokenPair{Access: "acc", Refresh: "ref"}))
	require.NoError(t, store.SaveUser(ctx, sessionID, auth.Identity{Email: "user@example.com"}))
}

func companiesUpstream() *sessionmocks.FakeUpstream {
	return &sessionmocks.FakeUpstream{
		CompaniesFunc: func(_ context.Context, _ ports.RequestAuth) (*ports.CompaniesResult, error) {
			return &ports.CompaniesResult{
				Companies: []company.Company{
					{ID: "co-1", Name: "Acme Ltd", IsConnected: true},
					{ID: "co-2", Name: "Beta LLC", IsConnected: true},
				},
				ActiveCompanyID: "co-1",
			}, nil
		},
		SetActiveFunc: func(_ context.Context, _ ports.RequestAuth, companyID string) (*ports.SwitchResult, error) {
			return &ports.SwitchResult{ActiveCompany: &company.Company{ID: companyID}}, nil
		},
		DisconnectFunc: func(_ context.Context, _ ports.RequestAuth, _ string) (string, error) {
			return "company disconnected", nil
		},
	}
}

func TestCompanies_RequiresSession(t *testing.T) {
	router, _ := newTestRouter(t, companiesUpstream())

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompanies_List(t *testing.T) {
	router, store := newTestRouter(t, companiesUpstream())
	seedHTTPSession(t, store, "sess-1")

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.AddCookie(sessionCookie("sess-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Companies       []company.Company `json:"companies"`
		ActiveCompanyID string            `json:"active_company_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Companies, 2)
	assert.Equal(t, "co-1", resp.ActiveCompanyID)
}

func TestCompanies_SetActive(t *testing.T) {
	router, store := newTestRouter(t, companiesUpstream())
	seedHTTPSession(t, store, "sess-1")
	require.NoError(t, store.SaveRegistry(context.Background(), "sess-1", company.Resolve([]company.Company{
		{ID: "co-1", Name: "Acme Ltd", IsConnected: true},
		{ID: "co-2", Name: "Beta LLC", IsConnected: true},
	}, "co-1")))

	body := strings.NewReader(`{"company_id":"co-2"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/companies/set-active", body)
	req.AddCookie(sessionCookie("sess-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ActiveCompanyID string `json:"active_company_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "co-2", resp.ActiveCompanyID)
}

func TestCompanies_SetActive_MissingID(t *testing.T) {
	router, store := newTestRouter(t, companiesUpstream())
	seedHTTPSession(t, store, "sess-1")

	body := strings.NewReader(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/api/companies/set-active", body)
	req.AddCookie(sessionCookie("sess-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanies_Disconnect(t *testing.T) {
	router, store := newTestRouter(t, companiesUpstream())
	seedHTTPSession(t, store, "sess-1")

	req := httptest.NewRequest(http.MethodPost, "/api/companies/co-1/disconnect", nil)
	req.AddCookie(sessionCookie("sess-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "company disconnected", resp["message"])
}

func TestPanels_Invoices(t *testing.T) {
	up := companiesUpstream()
	var gotQuery url.Values
	up.FetchFunc = func(_ context.Context, _ ports.RequestAuth, _ string, query url.Values) (json.RawMessage, error) {
		gotQuery = query
		return json.RawMessage(`{"invoices":[{"id":"inv-1"}]}`), nil
	}
	router, store := newTestRouter(t, up)
	seedHTTPSession(t, store, "sess-1")

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?page=1", nil)
	req.AddCookie(sessionCookie("sess-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"invoices":[{"id":"inv-1"}]}`, rec.Body.String())
	assert.Equal(t, "co-1", gotQuery.Get("company_id"))
}

func TestPanels_InvoiceByID(t *testing.T) {
	up := companiesUpstream()
	var gotPath string
	var gotQuery url.Values
	up.FetchFunc = func(_ context.Context, _ ports.RequestAuth, path string, query url.Values) (json.RawMessage, error) {
		gotPath = path
		gotQuery = query
		return json.RawMessage(`{"id":"inv-9","total":"125.00"}`), nil
	}
	router, store := newTestRouter(t, up)
	seedHTTPSession(t, store, "sess-1")

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/inv-9", nil)
	req.AddCookie(sessionCookie("sess-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/invoices/inv-9/", gotPath)
	assert.Equal(t, "co-1", gotQuery.Get("company_id"))
	assert.JSONEq(t, `{"id":"inv-9","total":"125.00"}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &sessionmocks.FakeUpstream{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"pesaflow-gateway"}`, rec.Body.String())

	head := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, head)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
