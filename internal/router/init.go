package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/igrotrend-auth/config"
	"github.com/oksasatya/igrotrend-auth/internal/application"
	"github.com/oksasatya/igrotrend-auth/internal/container"
	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
	esinfra "github.com/oksasatya/igrotrend-auth/internal/infrastructure/elastic"
	meminfra "github.com/oksasatya/igrotrend-auth/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/igrotrend-auth/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/igrotrend-auth/internal/interface/http"
	"github.com/oksasatya/igrotrend-auth/internal/router/modules"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
	"github.com/oksasatya/igrotrend-auth/pkg/mailer"
	"github.com/oksasatya/igrotrend-auth/pkg/response"
)

// slot describes how one second factor kind is exposed over HTTP.
type slot struct {
	Kind   entity.SlotKind
	Prefix string
	Label  string
}

var slots = []slot{
	{Kind: entity.SlotTwoFactor, Prefix: "2fa", Label: "2FA"},
	{Kind: entity.SlotYandexKey, Prefix: "yandex-key", Label: "Yandex Key"},
}

// Deps holds the services shared by HTTP modules and background jobs.
type Deps struct {
	Auth    *application.AuthService
	Factors map[entity.SlotKind]*application.SecondFactorManager
	Sweeper *application.Sweeper
	Cookies *helpers.Manager
}

type stores struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	codes  repository.VerificationCodeRepository
	audit  repository.AuditRepository
}

func buildStores(cfg *config.Config) (stores, error) {
	var s stores
	switch cfg.StoreDriver {
	case "memory":
		s.users = meminfra.NewUserRepository()
		s.tokens = meminfra.NewRefreshTokenRepository()
		s.codes = meminfra.NewVerificationCodeRepository()
	case "postgres":
		pool := container.GetPGPool()
		if pool == nil {
			return s, errors.New("postgres store selected but no pool configured")
		}
		s.users = pginfra.NewUserRepository(pool)
		s.tokens = pginfra.NewRefreshTokenRepository(pool)
		s.codes = pginfra.NewVerificationCodeRepository(pool)
	default:
		return s, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.AuditSink {
	case "", "none":
	case "memory":
		s.audit = meminfra.NewAuditRepository()
	case "postgres":
		pool := container.GetPGPool()
		if pool == nil {
			return s, errors.New("postgres audit sink selected but no pool configured")
		}
		s.audit = pginfra.NewAuditRepository(pool)
	case "elasticsearch":
		es := container.GetES()
		if es == nil {
			return s, errors.New("elasticsearch audit sink selected but no client configured")
		}
		s.audit = esinfra.NewAuditRepository(es, cfg.ESAuditIndex)
	default:
		return s, fmt.Errorf("unknown AUDIT_SINK %q", cfg.AuditSink)
	}
	return s, nil
}

// buildMailer picks the configured driver. Incomplete settings degrade to the logging mailer.
func buildMailer(cfg *config.Config, log *logrus.Logger) mailer.Mailer {
	fallback := mailer.NewLogMailer(log, cfg.IsDevelopment())
	switch cfg.MailDriver {
	case "smtp":
		if !cfg.SMTPConfigured() {
			log.Warn("SMTP settings incomplete, emails will only be logged")
			return fallback
		}
		from := cfg.SMTPFrom
		if from == "" {
			from = cfg.SMTPUser
		}
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, from)
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			log.Warn("Mailgun settings incomplete, emails will only be logged")
			return fallback
		}
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	case "queue":
		pub := container.GetRabbitPub()
		if pub == nil {
			log.Warn("RabbitMQ publisher unavailable, emails will only be logged")
			return fallback
		}
		return mailer.NewQueueMailer(pub)
	}
	return fallback
}

// BuildDeps constructs the auth services from the container singletons.
func BuildDeps() (*Deps, error) {
	cfg := container.GetConfig()
	log := container.GetLogger()

	st, err := buildStores(cfg)
	if err != nil {
		return nil, err
	}
	hasher, err := helpers.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	jwt := container.GetJWT()
	if jwt == nil {
		jwt = helpers.NewJWTManager(cfg.SigningKey(), cfg.JWTIssuer, cfg.AccessTTL)
		container.SetJWT(jwt)
	}
	mail := buildMailer(cfg, log)
	audit := application.NewAuditRecorder(st.audit, log)
	totp := helpers.NewTOTP(cfg.TOTPIssuer)

	factors := make(map[entity.SlotKind]*application.SecondFactorManager, len(slots))
	for _, s := range slots {
		m := application.NewSecondFactorManager(s.Kind, s.Label, st.users, totp)
		m.Mailer = mail
		m.AppName = cfg.AppName
		m.Audit = audit
		m.Logger = log
		factors[s.Kind] = m
	}

	tokens := application.NewRefreshTokenManager(st.tokens, hasher, cfg.RefreshTTL(), cfg.RefreshTokenLookup)
	codes := application.NewVerificationCodeManager(st.codes, cfg.VerificationCodeTTL)
	svc := &application.AuthService{
		Users:       st.users,
		Hasher:      hasher,
		JWT:         jwt,
		Tokens:      tokens,
		Codes:       codes,
		Factors:     factors,
		Mailer:      mail,
		Audit:       audit,
		Logger:      log,
		AppName:     cfg.AppName,
		ExposeCodes: cfg.IsDevelopment() && cfg.ExposeDevCodes,
	}

	sweeper := &application.Sweeper{Refresh: tokens, Codes: codes, Logger: log, Interval: cfg.CleanupInterval}
	sweeper.AddLimiter(container.GetLimiter())

	return &Deps{
		Auth:    svc,
		Factors: factors,
		Sweeper: sweeper,
		Cookies: helpers.NewCookie(cfg.RefreshCookieName, cfg.RefreshCookiePath, cfg.CookieDomain, cfg.CookieSecure, cfg.RefreshTTL()),
	}, nil
}

// InitModules registers every feature module with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, d *Deps) {
	cfg := container.GetConfig()
	log := container.GetLogger()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(d.Auth, d.Cookies, log)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(d.Auth, log), d.Auth.JWT))
	for _, s := range slots {
		r.Add(modules.NewSecondFactorModule(s.Prefix, handlers.NewSecondFactorHandler(d.Factors[s.Kind], log)))
	}
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}

	r.Engine.GET("/healthz", func(c *gin.Context) {
		resp := response.Success(c, http.StatusOK, gin.H{"store": cfg.StoreDriver}, "ok", nil)
		c.JSON(resp.Status, resp)
	})
}
