package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/infrastructure/memory"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
)

type sentMail struct {
	To, Subject, Text string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, text, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Text: text})
	return m.err
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc    *AuthService
	users  *memory.UserRepository
	tokens *memory.RefreshTokenRepository
	codes  *memory.VerificationCodeRepository
	audit  *memory.AuditRepository
	mail   *recordingMailer
	clock  *clock
	totp   *helpers.TOTP
}

func newFixture(t *testing.T, lookup string) *fixture {
	t.Helper()
	f := &fixture{
		users:  memory.NewUserRepository(),
		tokens: memory.NewRefreshTokenRepository(),
		codes:  memory.NewVerificationCodeRepository(),
		audit:  memory.NewAuditRepository(),
		mail:   &recordingMailer{},
		clock:  &clock{t: time.Unix(1_700_000_010, 0)},
		totp:   helpers.NewTOTP("ИгроТренд"),
	}
	log := helpers.NewDiscardLogger()
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	audit := NewAuditRecorder(f.audit, log)

	factors := map[entity.SlotKind]*SecondFactorManager{}
	for kind, label := range map[entity.SlotKind]string{entity.SlotTwoFactor: "2FA", entity.SlotYandexKey: "Yandex Key"} {
		m := NewSecondFactorManager(kind, label, f.users, f.totp).WithClock(f.clock.Now)
		m.Mailer, m.Audit, m.Logger, m.AppName = f.mail, audit, log, "ИгроТренд"
		factors[kind] = m
	}

	f.svc = &AuthService{
		Users:       f.users,
		Hasher:      hasher,
		JWT:         helpers.NewJWTManager("test-secret", "igrotrend", 15*time.Minute).WithClock(f.clock.Now),
		Tokens:      NewRefreshTokenManager(f.tokens, hasher, 30*24*time.Hour, lookup).WithClock(f.clock.Now),
		Codes:       NewVerificationCodeManager(f.codes, 10*time.Minute).WithClock(f.clock.Now),
		Factors:     factors,
		Mailer:      f.mail,
		Audit:       audit,
		Logger:      log,
		AppName:     "ИгроТренд",
		ExposeCodes: true,
	}
	return f
}

// verifiedUser registers and verifies alice, returning the first session.
func (f *fixture) verifiedUser(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	res, err := f.svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "secret1", Username: "alice"})
	require.NoError(t, err)
	sess, err := f.svc.Verify(ctx, res.Email, res.Code, Client{})
	require.NoError(t, err)
	return sess
}

func (f *fixture) code(t *testing.T, secret string) string {
	t.Helper()
	c, err := f.totp.Code(secret, f.clock.Now())
	require.NoError(t, err)
	return c
}

func (f *fixture) actions() []string {
	var out []string
	for _, e := range f.audit.Events() {
		out = append(out, e.Action)
	}
	return out
}
