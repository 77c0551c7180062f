package entity

import "time"

// PurposeRegister tags codes issued on registration.
const PurposeRegister = "register"

// VerificationCode is a one-time 6-digit code bound to an email and a purpose.
type VerificationCode struct {
	ID        string
	Email     string
	Code      string
	Purpose   string
	ExpiresAt time.Time
	CreatedAt time.Time
}
