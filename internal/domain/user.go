package domain

import "time"

// User represents an authenticated account. Ski specs and, transitively,
// notes are owned by exactly one user.
type User struct {
	ID string `json:"id"`
	// Email is normalized (trimmed, lowercased) before storage, so
	// lookups are exact-match and uniqueness is case-insensitive.
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // argon2id encoded hash, never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the server-side record backing a session cookie. The cookie
// carries a PASETO token referencing the session by id; the row makes
// logout an actual revocation instead of a client-side delete.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// IsRevoked reports whether the session was explicitly logged out.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsValid reports whether the session can still authenticate requests.
func (s *Session) IsValid(now time.Time) bool {
	return !s.IsRevoked() && !s.IsExpired(now)
}

// PasswordReset is a single-use, time-limited token letting a user set a
// new password without a session. Only the SHA-256 of the token is
// stored; the plaintext exists once, in the reset message to the user.
type PasswordReset struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// IsUsable reports whether the token can still redeem a password change.
func (p *PasswordReset) IsUsable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
