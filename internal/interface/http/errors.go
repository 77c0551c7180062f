package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/application"
	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
	"github.com/oksasatya/igrotrend-auth/pkg/validation"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthorized, apperr.KindSecondFactorRequired:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError renders err as an error envelope. Internal causes are logged, never returned.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err, "unhandled error")
	}
	msg := ae.Message
	if ae.Kind == apperr.KindInternal {
		if log != nil {
			log.WithError(ae.Err).WithFields(logrus.Fields{
				"op":         ae.Message,
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		msg = "Internal server error"
	}
	var details interface{}
	if len(ae.Details) > 0 {
		details = ae.Details
	}
	resp := response.Error[any](c, StatusFor(ae.Kind), string(ae.Kind), msg, details)
	c.JSON(resp.Status, resp)
}

// bindError renders a binding or validation failure as a 400.
func bindError(c *gin.Context, err error) {
	resp := response.Error[any](c, http.StatusBadRequest, string(apperr.KindValidation), "Invalid payload", validation.ToDetails(err))
	c.JSON(resp.Status, resp)
}

func clientOf(c *gin.Context) application.Client {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	return application.Client{IP: ip, UserAgent: c.GetHeader("User-Agent")}
}
