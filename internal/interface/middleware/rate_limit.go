package middleware

import (
	"expvar"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/config"
	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/pkg/ratelimit"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
)

// rateStats is published under /debug/vars as "ratelimit".
var rateStats = expvar.NewMap("ratelimit")

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyFunc builds the identity part of a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + ipFromCtx(c) }
}

// KeyByUserID limits authenticated callers by user and anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString("userID"); uid != "" {
			return "user:" + uid
		}
		return "ip:" + ipFromCtx(c)
	}
}

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimitOptions configures one guarded action.
type RateLimitOptions struct {
	Action string
	Limit  config.Limit
	Key    KeyFunc
	Allow  AllowFunc
	Logger *logrus.Logger
}

// RateLimit rejects a caller with 429 once it exceeds opts.Limit for opts.Action.
// Counters are keyed "<action>:<identity>". Limiter errors fail open.
func RateLimit(l ratelimit.Limiter, opts RateLimitOptions) gin.HandlerFunc {
	if l == nil || opts.Limit.Max <= 0 || opts.Limit.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	keyFn := opts.Key
	if keyFn == nil {
		keyFn = KeyByIP()
	}
	return func(c *gin.Context) {
		if opts.Allow != nil && opts.Allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		res, err := l.Check(c.Request.Context(), opts.Action+":"+keyFn(c), opts.Limit.Max, opts.Limit.Window)
		if err != nil {
			rateStats.Add("errors", 1)
			if opts.Logger != nil {
				opts.Logger.WithError(err).WithFields(logrus.Fields{
					"action":     opts.Action,
					"request_id": c.GetString("request_id"),
				}).Warn("rate limiter unavailable, allowing request")
			}
			c.Next()
			return
		}

		resetSec := int(math.Ceil(res.Reset.Seconds()))
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !res.Allowed {
			rateStats.Add(opts.Action+"_rejected", 1)
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, string(apperr.KindRateLimited),
				"Too many attempts. Please try again later.", nil)
			return
		}
		c.Next()
	}
}
