package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

// Audit actions.
const (
	ActionRegister          = "register"
	ActionVerify            = "verify"
	ActionLogin             = "login"
	ActionLoginFailed       = "login_failed"
	ActionRefresh           = "refresh"
	ActionLogout            = "logout"
	ActionSecondFactorOn    = "second_factor_enabled"
	ActionSecondFactorOff   = "second_factor_disabled"
	ActionSecondFactorError = "second_factor_rejected"
)

// Client identifies the caller of an operation for audit and notification purposes.
type Client struct {
	IP        string
	UserAgent string
}

// AuditRecorder writes audit events. Failures are logged and never returned.
// A nil repository makes it a no-op.
type AuditRecorder struct {
	Repo   repository.AuditRepository
	Logger *logrus.Logger
	now    func() time.Time
}

func NewAuditRecorder(repo repository.AuditRepository, logger *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{Repo: repo, Logger: logger, now: time.Now}
}

func (a *AuditRecorder) Record(ctx context.Context, action string, u *entity.User, email string, cl Client, meta map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	ev := entity.AuditEvent{
		ID:        uuid.NewString(),
		Email:     email,
		Action:    action,
		IP:        cl.IP,
		UserAgent: cl.UserAgent,
		Metadata:  meta,
		CreatedAt: a.now(),
	}
	if u != nil {
		ev.UserID = u.ID
		ev.Email = u.Email
	}
	if err := a.Repo.Record(ctx, ev); err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithField("action", action).Warn("audit record failed")
	}
}
