package upstream

// Package upstream is the HTTP client adapter for the fiscal backend REST
// API. It owns bearer-token attachment, cookie forwarding, and error
// normalization; callers never see raw transport errors.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// ErrUnauthorized is the sentinel for upstream 401 responses. The configured
// unauthorized hook has already run by the time callers observe it, so
// handlers translate it to an auth-required response without a second,
// generic error surface.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// Error is the single error type for non-2xx upstream responses. Message is
// extracted from the JSON body fields "error", "detail", "message" in that
// priority order, falling back to the status line.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// UnauthorizedHook is invoked once per request that comes back 401, before
// the error is returned. The gateway wires it to a forced session purge.
type UnauthorizedHook func(ctx context.Context, sessionID string)

// Config holds construction options for the client.
type Config struct {
	// BaseURL is the upstream API root, e.g. "https://backend.example.com/api".
	BaseURL string
	// Timeout bounds every request; a hung upstream must not leave the
	// dashboard on a dead spinner.
	Timeout time.Duration
	// Unauthorized is called on 401 responses. Optional.
	Unauthorized UnauthorizedHook
	// Client overrides the HTTP client (tests). Optional.
	Client *http.Client
}

// Client implements ports.Upstream.
type Client struct {
	baseURL      string
	hc           *http.Client
	unauthorized UnauthorizedHook
}

var _ ports.Upstream = (*Client)(nil)

// New builds an upstream client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("upstream base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse upstream base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		// The cookie jar keeps backend session cookies flowing alongside
		// bearer auth (hybrid scheme: the callback endpoint falls back to
		// the cookie when no Authorization header is present). The public
		// suffix list stops a cookie set under one registrable domain from
		// being replayed to another.
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("new cookie jar: %w", err)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	return &Client{
		baseURL:      base,
		hc:           hc,
		unauthorized: cfg.Unauthorized,
	}, nil
}

// request issues one call and decodes a 2xx JSON body into dst (skipped when
// dst is nil). Non-2xx responses come back as *Error; 401 additionally runs
// the unauthorized hook and yields ErrUnauthorized.
func (c *Client) request(ctx context.Context, ra ports.RequestAuth, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if ra.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+ra.Bearer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			if c.unauthorized != nil {
				c.unauthorized(ctx, ra.SessionID)
			}
			return ErrUnauthorized
		}
		return &Error{Status: resp.StatusCode, Message: extractMessage(resp.StatusCode, raw)}
	}

	if dst == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

const maxResponseBytes = 4 << 20

// extractMessage pulls a human-readable message out of an error body,
// preferring "error", then "detail", then "message".
func extractMessage(status int, raw []byte) string {
	var body struct {
		ErrorField string `json:"error"`
		Detail     string `json:"detail"`
		Message    string `json:"message"`
	}
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		for _, m := range []string{body.ErrorField, body.Detail, body.Message} {
			if m != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
