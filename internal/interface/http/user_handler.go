package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/application"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
)

type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"displayName"`
	EmailStatus      string    `json:"emailStatus"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	YandexKeyEnabled bool      `json:"yandexKeyEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		DisplayName:      u.DisplayName,
		EmailStatus:      string(u.EmailStatus),
		Role:             string(u.Role),
		TwoFactorEnabled: u.TwoFactor.Active(),
		YandexKeyEnabled: u.YandexKey.Active(),
		CreatedAt:        u.CreatedAt,
	}
}

type UserHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Me GET /api/auth/me (Bearer)
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, gin.H{"user": toUserResponse(u)}, "current user")
}
