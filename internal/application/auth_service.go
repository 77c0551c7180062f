package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/internal/domain/apperr"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
	"github.com/oksasatya/igrotrend-auth/pkg/mailer"
	"github.com/oksasatya/igrotrend-auth/pkg/mailer/templates"
)

const (
	minPasswordLen = 6
	minUsernameLen = 3
)

// Session is what a successful login, verification or refresh hands back.
type Session struct {
	User                  *entity.User
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	DisplayName string
	Client      Client
}

type RegisterResult struct {
	Email string
	// Code is only set when development code echo is enabled.
	Code string
}

type LoginInput struct {
	Email    string
	Password string
	// Codes holds one TOTP code per enabled second factor slot.
	Codes  map[entity.SlotKind]string
	Client Client
}

// AuthService drives registration, verification, login, refresh and logout.
type AuthService struct {
	Users   repository.UserRepository
	Hasher  helpers.Hasher
	JWT     *helpers.JWTManager
	Tokens  *RefreshTokenManager
	Codes   *VerificationCodeManager
	Factors map[entity.SlotKind]*SecondFactorManager
	Mailer  mailer.Mailer
	Audit   *AuditRecorder
	Logger  *logrus.Logger

	AppName     string
	ExposeCodes bool
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register creates a PENDING user and emails a verification code. A failed email
// send is logged and does not undo the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := normalizeEmail(in.Email)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if email == "" || in.Password == "" || username == "" {
		return RegisterResult{}, apperr.Validation("Email, password, and username are required")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return RegisterResult{}, apperr.Validation("Password must be at least 6 characters")
	}
	if limit := helpers.MaxSecretLen(s.Hasher); len(in.Password) > limit {
		return RegisterResult{}, apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", limit))
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		return RegisterResult{}, apperr.Validation("Username must be at least 3 characters")
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return RegisterResult{}, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return RegisterResult{}, apperr.Internal(err, "lookup email")
	}
	if _, err := s.Users.GetByUsername(ctx, username); err == nil {
		return RegisterResult{}, apperr.Conflict("Username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return RegisterResult{}, apperr.Internal(err, "lookup username")
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return RegisterResult{}, apperr.Internal(err, "hash password")
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = strings.TrimSpace(in.Username)
	}
	u := &entity.User{
		Email:        email,
		Username:     username,
		DisplayName:  display,
		PasswordHash: digest,
		EmailStatus:  entity.EmailPending,
		Role:         entity.RoleUser,
	}
	// the store is the final arbiter of uniqueness when two registrations race
	if err := s.Users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return RegisterResult{}, apperr.Conflict("Email already registered")
		case errors.Is(err, repository.ErrDuplicateUsername):
			return RegisterResult{}, apperr.Conflict("Username already taken")
		}
		return RegisterResult{}, apperr.Internal(err, "create user")
	}

	vc, err := s.Codes.Issue(ctx, email, entity.PurposeRegister)
	if err != nil {
		return RegisterResult{}, apperr.Internal(err, "issue verification code")
	}
	s.sendCode(ctx, u, vc)
	s.Audit.Record(ctx, ActionRegister, u, "", in.Client, nil)
	count("registrations")

	res := RegisterResult{Email: email}
	if s.ExposeCodes {
		res.Code = vc.Code
	}
	return res, nil
}

func (s *AuthService) sendCode(ctx context.Context, u *entity.User, vc *entity.VerificationCode) {
	if s.Mailer == nil {
		return
	}
	data := templates.NewVerifyEmailData(s.AppName, u.DisplayName, u.Email, vc.Code,
		templates.WithExpiresAt(vc.ExpiresAt, s.Codes.TTL))
	if err := mailer.SendTemplate(ctx, s.Mailer, u.Email, templates.VerifyEmail, data); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("verification email not sent")
	}
}

// Verify consumes a registration code, marks the email VERIFIED and opens a session.
func (s *AuthService) Verify(ctx context.Context, email, code string, cl Client) (*Session, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, apperr.Validation("Email and code are required")
	}
	if err := s.Codes.Consume(ctx, email, code, entity.PurposeRegister); err != nil {
		if errors.Is(err, ErrCodeNotFoundOrExpired) {
			return nil, apperr.Validation("Invalid or expired verification code")
		}
		return nil, apperr.Internal(err, "consume verification code")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	if !u.IsVerified() {
		if err := s.Users.UpdateStatus(ctx, u.ID, entity.EmailVerified); err != nil {
			return nil, apperr.Internal(err, "update email status")
		}
		u.EmailStatus = entity.EmailVerified
	}
	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, ActionVerify, u, "", cl, nil)
	return sess, nil
}

// Login checks the password, the verification status and every enabled second factor.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err, "load user")
	}
	// A password the hasher could never have accepted is a credential mismatch, not bad input.
	tooLong := len(in.Password) > helpers.MaxSecretLen(s.Hasher)
	if u == nil || tooLong || !s.Hasher.Verify(in.Password, u.PasswordHash) {
		s.Audit.Record(ctx, ActionLoginFailed, u, email, in.Client, map[string]any{"reason": "credentials"})
		count("login_failures")
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if !u.IsVerified() {
		return nil, apperr.Forbidden("Please verify your email first").
			WithDetails(map[string]any{"needsVerification": true, "email": u.Email})
	}

	if kinds := u.EnabledFactors(); len(kinds) > 0 {
		var missing []string
		for _, k := range kinds {
			if strings.TrimSpace(in.Codes[k]) == "" {
				missing = append(missing, string(k))
			}
		}
		if len(missing) > 0 {
			return nil, apperr.New(apperr.KindSecondFactorRequired, "Second factor code required").
				WithDetails(map[string]any{"factors": missing})
		}
		// Every code must match before any step is recorded, so one bad code burns none.
		steps := make(map[entity.SlotKind]int64, len(kinds))
		for _, k := range kinds {
			fm, ok := s.Factors[k]
			if !ok {
				return nil, apperr.Internal(errors.New("no manager for slot "+string(k)), "check second factor")
			}
			step, err := fm.Match(u, in.Codes[k])
			if err != nil {
				return nil, s.secondFactorFailed(ctx, u, k, in.Client, err)
			}
			steps[k] = step
		}
		for _, k := range kinds {
			if err := s.Factors[k].Consume(ctx, u, steps[k]); err != nil {
				return nil, s.secondFactorFailed(ctx, u, k, in.Client, err)
			}
		}
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, ActionLogin, u, "", in.Client, nil)
	count("logins")
	return sess, nil
}

func (s *AuthService) secondFactorFailed(ctx context.Context, u *entity.User, k entity.SlotKind, cl Client, err error) error {
	s.Audit.Record(ctx, ActionLoginFailed, u, "", cl, map[string]any{"reason": "second_factor", "factor": string(k)})
	count("login_failures")
	return err
}

// Refresh exchanges a refresh token for a new access token and a rotated refresh token.
func (s *AuthService) Refresh(ctx context.Context, raw string, cl Client) (*Session, error) {
	if raw == "" {
		return nil, apperr.Unauthorized("No refresh token provided")
	}
	rec, err := s.Tokens.Verify(ctx, raw)
	if err != nil {
		return nil, s.refreshErr(err, "verify refresh token")
	}
	u, err := s.Users.GetByID(ctx, rec.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	next, err := s.Tokens.Rotate(ctx, rec)
	if err != nil {
		return nil, s.refreshErr(err, "rotate refresh token")
	}
	access, exp, err := s.JWT.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, apperr.Internal(err, "issue access token")
	}
	s.Audit.Record(ctx, ActionRefresh, u, "", cl, nil)
	count("refreshes")
	return &Session{
		User:                  u,
		AccessToken:           access,
		AccessTokenExpiresAt:  exp,
		RefreshToken:          next.Raw,
		RefreshTokenExpiresAt: next.Record.ExpiresAt,
	}, nil
}

func (s *AuthService) refreshErr(err error, op string) error {
	if errors.Is(err, ErrRefreshTokenInvalid) {
		count("refresh_failures")
		return apperr.Unauthorized("Invalid or expired refresh token")
	}
	return apperr.Internal(err, op)
}

// Logout revokes the stored record behind raw, if any. It never fails.
func (s *AuthService) Logout(ctx context.Context, raw string, cl Client) {
	if raw == "" {
		return
	}
	rec, err := s.Tokens.Verify(ctx, raw)
	if err != nil {
		if !errors.Is(err, ErrRefreshTokenInvalid) && s.Logger != nil {
			s.Logger.WithError(err).Warn("logout: verify refresh token failed")
		}
		return
	}
	if err := s.Tokens.Revoke(ctx, rec.ID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("logout: revoke refresh token failed")
	}
	s.Audit.Record(ctx, ActionLogout, &entity.User{ID: rec.UserID}, "", cl, nil)
}

// CurrentUser loads the user behind a verified access token.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	return u, nil
}

func (s *AuthService) openSession(ctx context.Context, u *entity.User) (*Session, error) {
	access, exp, err := s.JWT.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, apperr.Internal(err, "issue access token")
	}
	tok, err := s.Tokens.Issue(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal(err, "issue refresh token")
	}
	return &Session{
		User:                  u,
		AccessToken:           access,
		AccessTokenExpiresAt:  exp,
		RefreshToken:          tok.Raw,
		RefreshTokenExpiresAt: tok.Record.ExpiresAt,
	}, nil
}
