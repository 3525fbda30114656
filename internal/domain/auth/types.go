package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

// TokenPair holds the upstream access/refresh bearer tokens for a session.
// Values are opaque: the gateway never inspects or validates their contents.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IsZero reports whether no tokens are present.
func (p TokenPair) IsZero() bool { return p.Access == "" && p.Refresh == "" }

// Identity represents the authenticated dashboard user as reported by the
// upstream backend. Mirrored into the session store so the dashboard can
// restore it across page reloads.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
