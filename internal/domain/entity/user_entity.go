package entity

import (
	"time"
)

// EmailStatus tracks whether the address has been confirmed with a code.
type EmailStatus string

const (
	EmailPending  EmailStatus = "PENDING"
	EmailVerified EmailStatus = "VERIFIED"
)

// User is the aggregate root for the auth domain
// Passwords are stored as one-way digests in PasswordHash, never in plaintext.
type User struct {
	ID           string
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
	EmailStatus  EmailStatus
	Role         Role

	TwoFactor SecondFactor
	YandexKey SecondFactor

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVerified reports whether the email address was confirmed.
func (u *User) IsVerified() bool { return u.EmailStatus == EmailVerified }

// Factor returns the slot storage for kind, or nil for an unknown kind.
func (u *User) Factor(kind SlotKind) *SecondFactor {
	switch kind {
	case SlotTwoFactor:
		return &u.TwoFactor
	case SlotYandexKey:
		return &u.YandexKey
	}
	return nil
}

// EnabledFactors lists the slots that must be satisfied at login.
func (u *User) EnabledFactors() []SlotKind {
	var out []SlotKind
	for _, k := range SlotKinds {
		if f := u.Factor(k); f != nil && f.Active() {
			out = append(out, k)
		}
	}
	return out
}
