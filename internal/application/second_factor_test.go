package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
)

func enroll(t *testing.T, f *fixture, kind entity.SlotKind) string {
	t.Helper()
	ctx := context.Background()
	m := f.svc.Factors[kind]
	e, err := m.BeginEnrollment(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmEnrollment(ctx, "alice@example.com", f.code(t, e.Secret), e.Secret, Client{IP: "10.0.0.1"}))
	return e.Secret
}

func TestSecondFactor_BeginEnrollment(t *testing.T) {
	f := newFixture(t, LookupScan)
	f.verifiedUser(t)
	m := f.svc.Factors[entity.SlotTwoFactor]

	e, err := m.BeginEnrollment(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)
	assert.NotEmpty(t, e.Secret)
	assert.True(t, strings.HasPrefix(e.ProvisioningURI, "otpauth://totp/"))
	assert.True(t, strings.HasPrefix(e.QRImage, "data:image/png;base64,"))

	u, _ := f.users.GetByEmail(context.Background(), "alice@example.com")
	assert.Equal(t, entity.SecondFactor{}, u.TwoFactor, "nothing persisted before confirmation")

	_, err = m.BeginEnrollment(context.Background(), "ghost@example.com")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSecondFactor_ConfirmEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, LookupScan)
	f.verifiedUser(t)
	m := f.svc.Factors[entity.SlotYandexKey]

	e, err := m.BeginEnrollment(ctx, "alice@example.com")
	require.NoError(t, err)

	err = m.ConfirmEnrollment(ctx, "alice@example.com", "000000", e.Secret, Client{})
	if f.code(t, e.Secret) != "000000" {
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}

	require.NoError(t, m.ConfirmEnrollment(ctx, "alice@example.com", f.code(t, e.Secret), e.Secret, Client{}))
	u, _ := f.users.GetByEmail(ctx, "alice@example.com")
	assert.True(t, u.YandexKey.Active())
	assert.False(t, u.TwoFactor.Active(), "slots are independent")

	mails := f.mail.Sent()
	require.NotEmpty(t, mails)
	assert.Contains(t, mails[len(mails)-1].Text, "Yandex Key")

	err = m.ConfirmEnrollment(ctx, "alice@example.com", f.code(t, e.Secret), e.Secret, Client{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "active slot is not overwritten")
	assert.Contains(t, f.actions(), ActionSecondFactorOn)
}

func TestSecondFactor_MatchConsumeBlocksReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, LookupScan)
	f.verifiedUser(t)
	secret := enroll(t, f, entity.SlotTwoFactor)
	m := f.svc.Factors[entity.SlotTwoFactor]

	load := func() *entity.User {
		u, err := f.users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		return u
	}

	_, err := m.Match(load(), f.code(t, secret))
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "enrollment code is already spent")

	f.clock.Advance(30 * time.Second)
	code := f.code(t, secret)
	u := load()
	step, err := m.Match(u, code)
	require.NoError(t, err)
	_, err = m.Match(load(), code)
	require.NoError(t, err, "matching alone records nothing")

	require.NoError(t, m.Consume(ctx, u, step))
	assert.Equal(t, step, u.TwoFactor.LastStep)
	assert.True(t, apperr.Is(m.Consume(ctx, load(), step), apperr.KindUnauthorized), "a step is consumed once")
	_, err = m.Match(load(), code)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "replay within the window")

	f.clock.Advance(30 * time.Second)
	step, err = m.Match(load(), f.code(t, secret))
	require.NoError(t, err)
	assert.NoError(t, m.Consume(ctx, load(), step))
}

func TestSecondFactor_MatchWithoutSecret(t *testing.T) {
	f := newFixture(t, LookupScan)
	f.verifiedUser(t)
	u, _ := f.users.GetByEmail(context.Background(), "alice@example.com")
	_, err := f.svc.Factors[entity.SlotTwoFactor].Match(u, "123456")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestSecondFactor_Disable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, LookupScan)
	f.verifiedUser(t)
	m := f.svc.Factors[entity.SlotTwoFactor]

	err := m.Disable(ctx, "alice@example.com", "123456", Client{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "2FA not enabled")

	secret := enroll(t, f, entity.SlotTwoFactor)
	f.clock.Advance(30 * time.Second)

	wrong := "000000"
	if f.code(t, secret) == wrong {
		wrong = "111111"
	}
	err = m.Disable(ctx, "alice@example.com", wrong, Client{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	u, _ := f.users.GetByEmail(ctx, "alice@example.com")
	assert.True(t, u.TwoFactor.Active(), "wrong code keeps the slot enabled")
	assert.Contains(t, f.actions(), ActionSecondFactorError)

	require.NoError(t, m.Disable(ctx, "alice@example.com", f.code(t, secret), Client{}))
	u, _ = f.users.GetByEmail(ctx, "alice@example.com")
	assert.Equal(t, entity.SecondFactor{}, u.TwoFactor)
	assert.Contains(t, f.actions(), ActionSecondFactorOff)
}
