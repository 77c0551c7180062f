package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/application"
	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
)

// SecondFactorHandler serves setup/verify/disable for one slot.
type SecondFactorHandler struct {
	Mgr    *application.SecondFactorManager
	Logger *logrus.Logger
}

func NewSecondFactorHandler(mgr *application.SecondFactorManager, logger *logrus.Logger) *SecondFactorHandler {
	return &SecondFactorHandler{Mgr: mgr, Logger: logger}
}

type confirmFactorRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Code   string `json:"code" binding:"required,otp"`
	Secret string `json:"secret" binding:"required,max=128"`
}

type disableFactorRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

// Setup GET|POST /api/<slot>/setup?email=
func (h *SecondFactorHandler) Setup(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" && c.Request.ContentLength > 0 {
		var body struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			email = strings.TrimSpace(body.Email)
		}
	}
	if email == "" {
		writeError(c, h.Logger, apperr.Validation("Email is required"))
		return
	}
	e, err := h.Mgr.BeginEnrollment(c.Request.Context(), email)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, e, h.Mgr.Label+" setup started")
}

// Verify POST /api/<slot>/verify confirms enrollment.
func (h *SecondFactorHandler) Verify(c *gin.Context) {
	var req confirmFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Mgr.ConfirmEnrollment(c.Request.Context(), req.Email, req.Code, req.Secret, clientOf(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, gin.H{"enabled": true}, h.Mgr.Label+" enabled")
}

// Disable POST /api/<slot>/disable
func (h *SecondFactorHandler) Disable(c *gin.Context) {
	var req disableFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Mgr.Disable(c.Request.Context(), req.Email, req.Code, clientOf(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, gin.H{"enabled": false}, h.Mgr.Label+" disabled")
}
