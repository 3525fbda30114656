package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pesaflow/qbo-ui-api/internal/domain/auth"
	"github.com/pesaflow/qbo-ui-api/internal/domain/company"
	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// Wire shapes for the upstream envelope. Only the fields the gateway
// consumes are declared; everything else passes through untouched.

type registerResponse struct {
	Success bool           `json:"success"`
	User    auth.Identity  `json:"user"`
	Tokens  auth.TokenPair `json:"tokens"`
	Message string         `json:"message"`
}

type loginResponse struct {
	Success     bool             `json:"success"`
	Company     *company.Company `json:"company"`
	IsConnected bool             `json:"is_connected"`
	AuthURL     string           `json:"authUrl"`
	Tokens      auth.TokenPair   `json:"tokens"`
	Message     string           `json:"message"`
}

type callbackResponse struct {
	Success   bool             `json:"success"`
	Company   *company.Company `json:"company"`
	User      auth.Identity    `json:"user"`
	Tokens    auth.TokenPair   `json:"tokens"`
	Duplicate bool             `json:"duplicate"`
	Message   string           `json:"message"`
}

type companiesResponse struct {
	Success         bool              `json:"success"`
	Companies       []company.Company `json:"companies"`
	ActiveCompanyID string            `json:"active_company_id"`
}

type setActiveResponse struct {
	Success       bool             `json:"success"`
	ActiveCompany *company.Company `json:"active_company"`
	Message       string           `json:"message"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register creates an account and returns the new identity plus tokens.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	var resp registerResponse
	if err := c.request(ctx, ports.RequestAuth{}, http.MethodPost, "/register/", in, &resp); err != nil {
		return nil, err
	}
	return &ports.RegisterResult{
		User:    resp.User,
		Tokens:  resp.Tokens,
		Message: resp.Message,
	}, nil
}

// Login exchanges credentials for tokens and reports whether a connected
// company already exists; when it does not, AuthURL carries the external
// OAuth consent URL the user must be sent to.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.request(ctx, ports.RequestAuth{}, http.MethodPost, "/auth-url/", body, &resp); err != nil {
		return nil, err
	}
	return &ports.LoginResult{
		Connected: resp.IsConnected,
		AuthURL:   resp.AuthURL,
		Company:   resp.Company,
		Tokens:    resp.Tokens,
		Message:   resp.Message,
	}, nil
}

// ExchangeCallback forwards the OAuth redirect parameters for server-side
// code exchange. The request is anonymous-capable: the backend consults its
// own session cookie when no bearer token accompanies it.
func (c *Client) ExchangeCallback(
	ctx context.Context,
	ra ports.RequestAuth,
	in ports.ExchangeInput,
) (*ports.ExchangeResult, error) {
	var resp callbackResponse
	if err := c.request(ctx, ra, http.MethodPost, "/callback/", in, &resp); err != nil {
		return nil, err
	}
	return &ports.ExchangeResult{
		Duplicate: resp.Duplicate,
		User:      resp.User,
		Company:   resp.Company,
		Tokens:    resp.Tokens,
		Message:   resp.Message,
	}, nil
}

// Companies fetches the full company list for the authenticated user.
func (c *Client) Companies(ctx context.Context, ra ports.RequestAuth) (*ports.CompaniesResult, error) {
	var resp companiesResponse
	if err := c.request(ctx, ra, http.MethodGet, "/companies/", nil, &resp); err != nil {
		return nil, err
	}
	return &ports.CompaniesResult{
		Companies:       resp.Companies,
		ActiveCompanyID: resp.ActiveCompanyID,
	}, nil
}

// SetActiveCompany changes the active tenant upstream.
func (c *Client) SetActiveCompany(
	ctx context.Context,
	ra ports.RequestAuth,
	companyID string,
) (*ports.SwitchResult, error) {
	body := map[string]string{"company_id": companyID}
	var resp setActiveResponse
	if err := c.request(ctx, ra, http.MethodPost, "/companies/set-active/", body, &resp); err != nil {
		return nil, err
	}
	return &ports.SwitchResult{
		ActiveCompany: resp.ActiveCompany,
		Message:       resp.Message,
	}, nil
}

// DisconnectCompany revokes the QuickBooks connection for the company.
func (c *Client) DisconnectCompany(ctx context.Context, ra ports.RequestAuth, companyID string) (string, error) {
	path := fmt.Sprintf("/companies/%s/disconnect/", url.PathEscape(companyID))
	var resp messageResponse
	if err := c.request(ctx, ra, http.MethodPost, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout invalidates the upstream session. Best-effort at the call site:
// the service layer swallows and logs any error.
func (c *Client) Logout(ctx context.Context, ra ports.RequestAuth) error {
	return c.request(ctx, ra, http.MethodPost, "/logout/", nil, nil)
}

// Fetch forwards a read-only panel request and returns the body verbatim.
func (c *Client) Fetch(
	ctx context.Context,
	ra ports.RequestAuth,
	path string,
	query url.Values,
) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var raw json.RawMessage
	if err := c.request(ctx, ra, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
