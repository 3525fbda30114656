package httpx

import "context"

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context carrying the gateway session ID.
func SetSessionInContext(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFromContext returns the gateway session ID and whether one is present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id, true
	}
	return "", false
}
