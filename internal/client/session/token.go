package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/itd-social/itd-client/internal/client/repositories/credentials"
)

// AccessToken implements api.TokenSource. It reads the store on every call so
// a token rotated by RefreshToken is picked up by the next request.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.creds.Get(ctx, credentials.KeyAccessToken)
}

// SessionCookie implements api.TokenSource.
func (m *Manager) SessionCookie(ctx context.Context) (string, error) {
	return m.creds.Get(ctx, credentials.KeySessionCookie)
}

// TokenExpiresAt reports the expiry of the persisted access token, read from
// its JWT claims without signature verification (the client has no key and
// does not need one; the value is advisory). The zero time means the expiry
// is unknown: no token, not a JWT, or no exp claim.
func (m *Manager) TokenExpiresAt(ctx context.Context) time.Time {
	token, err := m.creds.Get(ctx, credentials.KeyAccessToken)
	if err != nil || token == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// TokenExpired reports whether the persisted token carries an exp claim in
// the past. Callers use it to decide when to call RefreshToken; nothing in
// this client refreshes automatically.
func (m *Manager) TokenExpired(ctx context.Context) bool {
	exp := m.TokenExpiresAt(ctx)
	return !exp.IsZero() && exp.Before(time.Now())
}
