package entity

import "time"

// RefreshToken is one stored session-renewal capability.
// Only the digest of the raw token is persisted. Selector is set for
// split tokens ("selector.verifier") and empty for scan-mode tokens.
type RefreshToken struct {
	ID        string
	UserID    string
	Selector  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its absolute expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
