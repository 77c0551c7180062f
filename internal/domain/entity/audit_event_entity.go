package entity

import "time"

// AuditEvent records one credential-sensitive action.
type AuditEvent struct {
	ID        string
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
