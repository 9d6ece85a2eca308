package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  The raw
// token handed to the client is never stored; only its keyed hash.
//
// Fields:
//
//	ID        – UUID primary key.
//	UserID    – owner of the token.
//	TokenHash – HMAC-SHA256 hex digest of the raw token.
//	CreatedAt – issue time.
//	ExpiresAt – CreatedAt plus the configured number of days.
//	Revoked   – set on sign-out, rotation or password change.
type RefreshToken struct {
	ID        string    // refresh_tokens.id
	UserID    string    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	CreatedAt time.Time // refresh_tokens.created_at
	ExpiresAt time.Time // refresh_tokens.expires_at
	Revoked   bool      // refresh_tokens.revoked
}

// Active reports whether the token can still be exchanged at now.
func (t RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
