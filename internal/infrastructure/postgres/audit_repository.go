package postgres

import (
	"context"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, e entity.AuditEvent) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_audit_logs (id, user_id, email, action, ip, user_agent, metadata, created_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, meta, e.CreatedAt)
	return err
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
