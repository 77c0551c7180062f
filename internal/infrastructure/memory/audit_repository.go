package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

// AuditRepository keeps events in memory; tests read them back with Events.
type AuditRepository struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func NewAuditRepository() *AuditRepository { return &AuditRepository{} }

func (r *AuditRepository) Record(_ context.Context, e entity.AuditEvent) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *AuditRepository) Events() []entity.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditEvent(nil), r.events...)
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
