// Package credentials persists the session material that must survive a
// process restart: the access token, the session cookie, and the signed-in
// username. Two backends are provided (sqlite and diskv flat files) plus a
// Sealed wrapper that encrypts values at rest.
package credentials

import "context"

// Well-known keys.
const (
	KeyAccessToken   = "access_token"
	KeySessionCookie = "session_cookie"
	KeyUsername      = "username"
)

// Repository is the durable key-value contract the session manager depends
// on. Get returns "" (and no error) for an absent key; it must be readable
// before the first network call.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
