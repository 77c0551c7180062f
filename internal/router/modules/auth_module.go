package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/igrotrend-auth/internal/container"
	handlers "github.com/oksasatya/igrotrend-auth/internal/interface/http"
)

// AuthModule wires the public auth endpoints:
// POST /api/auth/{register,verify,login,refresh,logout}
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()

	g := rg.Group("/auth")
	// limiters run before binding, so throttled callers never reach the store
	g.POST("/register", limit("register", cfg.RegisterLimit), m.Handler.Register)
	g.POST("/verify", limit("verify", cfg.VerifyLimit), m.Handler.Verify)
	g.POST("/login", limit("login", cfg.LoginLimit), m.Handler.Login)
	g.POST("/refresh", limit("refresh", cfg.RefreshLimit), m.Handler.Refresh)
	g.POST("/logout", m.Handler.Logout)
}
