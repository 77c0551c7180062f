package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/igrotrend-auth/internal/container"
	handlers "github.com/oksasatya/igrotrend-auth/internal/interface/http"
)

// SecondFactorModule mounts setup/verify/disable for one slot under /api/<Prefix>.
type SecondFactorModule struct {
	Prefix  string
	Handler *handlers.SecondFactorHandler
}

func NewSecondFactorModule(prefix string, h *handlers.SecondFactorHandler) *SecondFactorModule {
	return &SecondFactorModule{Prefix: prefix, Handler: h}
}

func (m *SecondFactorModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/"+m.Prefix, limit(m.Prefix, container.GetConfig().TwoFactorLimit))
	g.GET("/setup", m.Handler.Setup)
	g.POST("/setup", m.Handler.Setup)
	g.POST("/verify", m.Handler.Verify)
	g.POST("/disable", m.Handler.Disable)
}

func (m *SecondFactorModule) Name() string { return m.Prefix }
