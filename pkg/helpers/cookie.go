package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Manager writes the refresh-token cookie.
type Manager struct {
	Name   string
	Path   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

func NewCookie(name, path, domain string, secure bool, maxAge time.Duration) *Manager {
	if path == "" {
		path = "/"
	}
	return &Manager{Name: name, Path: path, Domain: domain, Secure: secure, MaxAge: maxAge}
}

// SetRefresh stores the raw refresh token as an HTTP-only cookie living as long as the token.
func (m *Manager) SetRefresh(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, token, int(m.MaxAge.Seconds()), m.Path, m.Domain, m.Secure, true)
}

// Read returns the refresh token cookie value, or "".
func (m *Manager) Read(c *gin.Context) string {
	v, err := c.Cookie(m.Name)
	if err != nil {
		return ""
	}
	return v
}

// Clear expires the refresh cookie immediately.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, "", -1, m.Path, m.Domain, m.Secure, true)
}
