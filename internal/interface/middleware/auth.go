package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
)

// Auth validates the Bearer access token and sets userID and userEmail in the Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Abort(c, http.StatusUnauthorized, string(apperr.KindUnauthorized), "Missing access token", nil)
			return
		}
		claims, err := jwt.VerifyAccessToken(strings.TrimSpace(token))
		if err != nil {
			msg := "Invalid access token"
			if errors.Is(err, helpers.ErrTokenExpired) {
				msg = "Access token expired"
			}
			response.Abort(c, http.StatusUnauthorized, string(apperr.KindUnauthorized), msg, nil)
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
