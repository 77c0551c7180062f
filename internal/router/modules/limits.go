package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/igrotrend-auth/config"
	"github.com/oksasatya/igrotrend-auth/internal/container"
	"github.com/oksasatya/igrotrend-auth/internal/interface/middleware"
)

// limit guards one action with the shared limiter, keyed by client IP.
func limit(action string, l config.Limit) gin.HandlerFunc {
	var allow middleware.AllowFunc
	if cfg := container.GetConfig(); cfg != nil && cfg.RateLimitBypassPrivate {
		allow = middleware.AllowPrivateIP()
	}
	return middleware.RateLimit(container.GetLimiter(), middleware.RateLimitOptions{
		Action: action,
		Limit:  l,
		Key:    middleware.KeyByIP(),
		Allow:  allow,
		Logger: container.GetLogger(),
	})
}
