package repository

import (
	"context"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
)

// AuditRepository stores auth audit events.
type AuditRepository interface {
	Record(ctx context.Context, e entity.AuditEvent) error
}
