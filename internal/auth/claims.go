package auth

import (
	"time"
)

// SessionClaims represents the claims stored in a PASETO session token.
// The token is encrypted (v4.local), so none of this is readable without
// the server key.
type SessionClaims struct {
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"` // user id
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"` // session row id
}

// UserID returns the authenticated user's id.
func (c *SessionClaims) UserID() string { return c.Subject }

// SessionID returns the server-side session row id the token is bound to.
func (c *SessionClaims) SessionID() string { return c.TokenID }
