package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/igrotrend-auth/internal/interface/http"
	"github.com/oksasatya/igrotrend-auth/internal/interface/middleware"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
)

// UserModule serves the Bearer-protected GET /api/auth/me.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/auth/me", middleware.Auth(m.JWT), m.Handler.Me)
}
