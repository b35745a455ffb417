package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload of the session cookie. It carries only
// the opaque session ID; all session state stays server-side.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session token referenced by the claims
func (c *SessionClaims) SessionID() string {
	return c.ID
}
