package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_VerifyEmail(t *testing.T) {
	d := NewVerifyEmailData("ИгроТренд", "alice", "a@x.com", "042137",
		WithExpiresAt(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), 10*time.Minute))

	subject, text, html, err := Render(VerifyEmail, d)
	require.NoError(t, err)
	assert.Contains(t, subject, "042137")
	assert.NotContains(t, subject, "\n")
	assert.Contains(t, text, "042137")
	assert.Contains(t, text, "10 мин")
	assert.Contains(t, html, "042137")
}

func TestRender_SecondFactorChanged(t *testing.T) {
	d := NewSecondFactorChangedData("", "", "a@x.com", "2fa", false, WithIP("<script>"))

	subject, text, html, err := Render(SecondFactorChanged, d)
	require.NoError(t, err)
	assert.Contains(t, subject, "отключен")
	assert.Contains(t, text, "a@x.com")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", EmailData{})
	assert.Error(t, err)
}
