package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/application"
	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,pwd"`
	Username    string `json:"username" binding:"required,uname"`
	DisplayName string `json:"displayName" binding:"omitempty,max=64"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type loginRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"twoFactorCode"`
	YandexKeyCode string `json:"yandexKeyCode"`
}

type sessionResponse struct {
	User                 *userResponse `json:"user,omitempty"`
	AccessToken          string        `json:"accessToken"`
	AccessTokenExpiresAt time.Time     `json:"accessTokenExpiresAt"`
}

// startSession sets the refresh cookie and writes the access token.
func (h *AuthHandler) startSession(c *gin.Context, s *application.Session, withUser bool, msg string) {
	h.Cookies.SetRefresh(c, s.RefreshToken)
	body := sessionResponse{AccessToken: s.AccessToken, AccessTokenExpiresAt: s.AccessTokenExpiresAt}
	if withUser {
		u := toUserResponse(s.User)
		body.User = &u
	}
	response.OK(c, body, msg)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Client:      clientOf(c),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	data := gin.H{"email": res.Email}
	if res.Code != "" {
		data["code"] = res.Code
	}
	response.OK(c, data, "Verification code sent to your email")
}

// Verify POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	s, err := h.Svc.Verify(c.Request.Context(), req.Email, req.Code, clientOf(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.startSession(c, s, true, "Email verified")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	codes := map[entity.SlotKind]string{}
	if req.TwoFactorCode != "" {
		codes[entity.SlotTwoFactor] = req.TwoFactorCode
	}
	if req.YandexKeyCode != "" {
		codes[entity.SlotYandexKey] = req.YandexKeyCode
	}
	s, err := h.Svc.Login(c.Request.Context(), application.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Codes:    codes,
		Client:   clientOf(c),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.startSession(c, s, true, "Logged in")
}

// Refresh POST /api/auth/refresh (refresh cookie)
func (h *AuthHandler) Refresh(c *gin.Context) {
	s, err := h.Svc.Refresh(c.Request.Context(), h.Cookies.Read(c), clientOf(c))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			h.Cookies.Clear(c)
		}
		writeError(c, h.Logger, err)
		return
	}
	h.startSession(c, s, false, "Token refreshed")
}

// Logout POST /api/auth/logout always succeeds and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), h.Cookies.Read(c), clientOf(c))
	h.Cookies.Clear(c)
	response.OK[any](c, nil, "Logged out")
}
