package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/igrotrend-auth/config"
)

// DebugModule exposes expvar counters ("auth", "ratelimit") at /api/debug/vars.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := limit("debug", config.Limit{Max: 120, Window: time.Minute})
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
