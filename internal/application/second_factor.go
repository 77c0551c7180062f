package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
	"github.com/oksasatya/igrotrend-auth/pkg/mailer"
	"github.com/oksasatya/igrotrend-auth/pkg/mailer/templates"
)

// Enrollment is a generated, not yet persisted, TOTP secret.
type Enrollment struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioningUri"`
	QRImage         string `json:"qrImage"`
}

// SecondFactorManager enrolls, checks and disables one TOTP slot. The same type
// serves every slot; Kind selects the storage columns.
type SecondFactorManager struct {
	Kind  entity.SlotKind
	Label string

	Users   repository.UserRepository
	TOTP    *helpers.TOTP
	Mailer  mailer.Mailer
	AppName string
	Audit   *AuditRecorder
	Logger  *logrus.Logger
	QRSize  int

	now func() time.Time
}

func NewSecondFactorManager(kind entity.SlotKind, label string, users repository.UserRepository, totp *helpers.TOTP) *SecondFactorManager {
	return &SecondFactorManager{Kind: kind, Label: label, Users: users, TOTP: totp, QRSize: 256, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (m *SecondFactorManager) WithClock(now func() time.Time) *SecondFactorManager {
	m.now = now
	return m
}

func (m *SecondFactorManager) user(ctx context.Context, email string) (*entity.User, error) {
	u, err := m.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	return u, nil
}

// BeginEnrollment generates a fresh secret for the user; nothing is stored yet.
func (m *SecondFactorManager) BeginEnrollment(ctx context.Context, email string) (Enrollment, error) {
	u, err := m.user(ctx, email)
	if err != nil {
		return Enrollment{}, err
	}
	key, err := m.TOTP.Generate(u.Email)
	if err != nil {
		return Enrollment{}, apperr.Internal(err, "generate totp secret")
	}
	qr, err := helpers.QRDataURL(key, m.QRSize)
	if err != nil {
		return Enrollment{}, apperr.Internal(err, "render qr")
	}
	return Enrollment{Secret: key.Secret(), ProvisioningURI: key.URL(), QRImage: qr}, nil
}

// ConfirmEnrollment checks code against the unsaved secret and, on success, stores and enables it.
// An already enabled slot must be disabled first, so a known email alone cannot replace a secret.
func (m *SecondFactorManager) ConfirmEnrollment(ctx context.Context, email, code, secret string, cl Client) error {
	u, err := m.user(ctx, email)
	if err != nil {
		return err
	}
	if u.Factor(m.Kind).Active() {
		return apperr.Validation(m.Label + " already enabled")
	}
	step, ok := m.TOTP.Match(secret, code, m.now())
	if !ok {
		m.Audit.Record(ctx, ActionSecondFactorError, u, "", cl, map[string]any{"factor": string(m.Kind), "op": "enable"})
		return apperr.Validation("Invalid code")
	}
	if err := m.Users.EnableSecondFactor(ctx, u.ID, m.Kind, secret, step); err != nil {
		return apperr.Internal(err, "enable second factor")
	}
	m.Audit.Record(ctx, ActionSecondFactorOn, u, "", cl, map[string]any{"factor": string(m.Kind)})
	m.notify(ctx, u, true, cl)
	return nil
}

// Disable clears the slot after checking code against the stored secret.
func (m *SecondFactorManager) Disable(ctx context.Context, email, code string, cl Client) error {
	u, err := m.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal(err, "load user")
	}
	if u == nil || !u.Factor(m.Kind).Active() {
		return apperr.Validation(m.Label + " not enabled")
	}
	if err := m.verify(ctx, u, code); err != nil {
		m.Audit.Record(ctx, ActionSecondFactorError, u, "", cl, map[string]any{"factor": string(m.Kind), "op": "disable"})
		if apperr.Is(err, apperr.KindUnauthorized) {
			return apperr.Validation("Invalid code")
		}
		return err
	}
	if err := m.Users.DisableSecondFactor(ctx, u.ID, m.Kind); err != nil {
		return apperr.Internal(err, "disable second factor")
	}
	m.Audit.Record(ctx, ActionSecondFactorOff, u, "", cl, map[string]any{"factor": string(m.Kind)})
	m.notify(ctx, u, false, cl)
	return nil
}

// Match checks code against the stored secret and returns its time step without recording it.
func (m *SecondFactorManager) Match(u *entity.User, code string) (int64, error) {
	f := u.Factor(m.Kind)
	step, ok := m.TOTP.Match(f.Secret, code, m.now())
	if !ok || step <= f.LastStep {
		return 0, apperr.Unauthorized("Invalid " + m.Label + " code")
	}
	return step, nil
}

// Consume records step as used. Losing a race for the same step is an invalid code.
func (m *SecondFactorManager) Consume(ctx context.Context, u *entity.User, step int64) error {
	advanced, err := m.Users.AdvanceSecondFactorStep(ctx, u.ID, m.Kind, step)
	if err != nil {
		return apperr.Internal(err, "advance second factor step")
	}
	if !advanced {
		return apperr.Unauthorized("Invalid " + m.Label + " code")
	}
	u.Factor(m.Kind).LastStep = step
	return nil
}

func (m *SecondFactorManager) verify(ctx context.Context, u *entity.User, code string) error {
	step, err := m.Match(u, code)
	if err != nil {
		return err
	}
	return m.Consume(ctx, u, step)
}

func (m *SecondFactorManager) notify(ctx context.Context, u *entity.User, enabled bool, cl Client) {
	if m.Mailer == nil {
		return
	}
	data := templates.NewSecondFactorChangedData(m.AppName, u.DisplayName, u.Email, m.Label, enabled,
		templates.WithIP(cl.IP), templates.WithTime(m.now()))
	if err := mailer.SendTemplate(ctx, m.Mailer, u.Email, templates.SecondFactorChanged, data); err != nil && m.Logger != nil {
		m.Logger.WithError(err).WithField("factor", m.Kind).Warn("second factor notification failed")
	}
}
