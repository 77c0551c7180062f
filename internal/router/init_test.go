package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/igrotrend-auth/config"
	"github.com/oksasatya/igrotrend-auth/internal/container"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
	"github.com/oksasatya/igrotrend-auth/pkg/mailer"
	"github.com/oksasatya/igrotrend-auth/pkg/ratelimit"
	"github.com/oksasatya/igrotrend-auth/pkg/validation"
)

func setupContainer(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("DEBUG_METRICS_ENABLED", "true")
	cfg := config.Load()
	container.SetConfig(cfg)
	container.SetLogger(helpers.NewDiscardLogger())
	container.SetJWT(nil)
	container.SetLimiter(ratelimit.NewMemory())
	container.SetPGPool(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)
	return cfg
}

func TestBuildDeps_Memory(t *testing.T) {
	setupContainer(t)
	validation.Init()
	gin.SetMode(gin.TestMode)

	deps, err := BuildDeps()
	require.NoError(t, err)
	assert.Len(t, deps.Factors, 2)
	assert.Len(t, deps.Sweeper.Limiters, 1, "memory limiter is swept")
	assert.NotNil(t, container.GetJWT())

	r := gin.New()
	reg := NewRegistry(r, helpers.NewDiscardLogger())
	InitModules(reg, deps)
	reg.RegisterAll()

	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /api/auth/register", "POST /api/auth/verify", "POST /api/auth/login",
		"POST /api/auth/refresh", "POST /api/auth/logout", "GET /api/auth/me",
		"GET /api/2fa/setup", "POST /api/2fa/setup", "POST /api/2fa/verify", "POST /api/2fa/disable",
		"GET /api/yandex-key/setup", "POST /api/yandex-key/verify", "POST /api/yandex-key/disable",
		"GET /api/debug/vars", "GET /healthz",
	} {
		assert.True(t, routes[want], want)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"secret1","username":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), `"code"`, "codes stay hidden unless EXPOSE_DEV_CODES is set")
}

func TestBuildDeps_Errors(t *testing.T) {
	t.Run("postgres without pool", func(t *testing.T) {
		cfg := setupContainer(t)
		cfg.StoreDriver = "postgres"
		_, err := BuildDeps()
		assert.ErrorContains(t, err, "no pool")
	})
	t.Run("unknown store", func(t *testing.T) {
		cfg := setupContainer(t)
		cfg.StoreDriver = "mongo"
		_, err := BuildDeps()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})
	t.Run("elasticsearch without client", func(t *testing.T) {
		cfg := setupContainer(t)
		cfg.AuditSink = "elasticsearch"
		_, err := BuildDeps()
		assert.ErrorContains(t, err, "elasticsearch")
	})
}

func TestBuildMailer_Fallbacks(t *testing.T) {
	cfg := setupContainer(t)
	log := helpers.NewDiscardLogger()

	cfg.MailDriver = "smtp"
	assert.IsType(t, &mailer.LogMailer{}, buildMailer(cfg, log), "incomplete SMTP settings")

	cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPass = "smtp.example.com", "bot", "pw"
	assert.IsType(t, &mailer.SMTP{}, buildMailer(cfg, log))

	cfg.MailDriver = "mailgun"
	assert.IsType(t, &mailer.LogMailer{}, buildMailer(cfg, log))
	cfg.MailgunDomain, cfg.MailgunAPIKey = "mg.example.com", "key"
	assert.IsType(t, &mailer.Mailgun{}, buildMailer(cfg, log))

	cfg.MailDriver = "queue"
	assert.IsType(t, &mailer.LogMailer{}, buildMailer(cfg, log), "no publisher")
}
