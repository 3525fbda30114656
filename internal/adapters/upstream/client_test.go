package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

func newTestClient(t *testing.T, handler http.Handler, hook UnauthorizedHook) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Unauthorized: hook})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	c, err := New(Config{})
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestClient_AttachesBearerWhenPresent(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"companies":[],"active_company_id":""}`))
	}), nil)

	_, err := c.Companies(context.Background(), ports.RequestAuth{Bearer: "tok-123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_AnonymousRequestHasNoAuthHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"is_connected":true}`))
	}), nil)

	_, err := c.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field wins", `{"error":"boom","detail":"d","message":"m"}`, "boom"},
		{"detail over message", `{"detail":"no such company","message":"m"}`, "no such company"},
		{"message fallback", `{"message":"try again"}`, "try again"},
		{"empty body", ``, "HTTP error! status: 500"},
		{"non-json body", `<html>oops</html>`, "HTTP error! status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			}), nil)

			_, err := c.Companies(context.Background(), ports.RequestAuth{Bearer: "tok"})
			require.Error(t, err)

			var upErr *Error
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, http.StatusInternalServerError, upErr.Status)
			assert.Equal(t, tt.want, upErr.Message)
		})
	}
}

func TestClient_UnauthorizedHookRunsExactlyOnce(t *testing.T) {
	hookCalls := 0
	var hookSession string
	hook := func(_ context.Context, sessionID string) {
		hookCalls++
		hookSession = sessionID
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	}), hook)

	_, err := c.Companies(context.Background(), ports.RequestAuth{Bearer: "stale", SessionID: "sess-9"})

	// The sentinel comes back instead of a generic *Error so callers do not
	// also surface a second error for the same call.
	require.ErrorIs(t, err, ErrUnauthorized)
	var upErr *Error
	assert.False(t, errors.As(err, &upErr))
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, "sess-9", hookSession)
}

func TestClient_FetchForwardsQueryAndBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("company_id"))
		_, _ = w.Write([]byte(`{"success":true,"invoices":[{"id":"inv-1"}]}`))
	}), nil)

	q := url.Values{}
	q.Set("company_id", "42")
	raw, err := c.Fetch(context.Background(), ports.RequestAuth{Bearer: "tok"}, "/invoices/", q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"invoices":[{"id":"inv-1"}]}`, string(raw))
}

func TestClient_DisconnectEscapesCompanyID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"success":true,"message":"disconnected"}`))
	}), nil)

	msg, err := c.DisconnectCompany(context.Background(), ports.RequestAuth{Bearer: "tok"}, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "disconnected", msg)
	assert.Equal(t, "/companies/a%2Fb/disconnect/", gotPath)
}

func TestClient_CookieJarRejectsPublicSuffixDomain(t *testing.T) {
	c, err := New(Config{BaseURL: "http://backend.example.co.uk/api"})
	require.NoError(t, err)
	jar := c.hc.Jar
	require.NotNil(t, jar)

	first, err := url.Parse("http://backend.example.co.uk/")
	require.NoError(t, err)
	jar.SetCookies(first, []*http.Cookie{{Name: "sessionid", Value: "x", Domain: "co.uk"}})

	// A cookie scoped to a bare public suffix must not reach sibling hosts.
	sibling, err := url.Parse("http://other.example2.co.uk/")
	require.NoError(t, err)
	assert.Empty(t, jar.Cookies(sibling))
}
