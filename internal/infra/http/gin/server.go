package ginserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"churnportal/internal/infra/config"
	"churnportal/internal/infra/obs"
	"churnportal/internal/infra/security"
)

const (
	csrfFieldName  = "csrf_token"
	csrfCookieName = "churn_portal_csrf"
)

type Handlers struct {
	Pages      PagesHTTP
	Auth       AuthHTTP
	Dashboard  DashboardHTTP
	Department DepartmentHTTP
	FormsAPI   FormsAPIHTTP
	// Session resolves the browser id and login session for every page and API call.
	Session gin.HandlerFunc
}

// NewRouter builds the gin engine without CSRF protection. NewServer wraps it.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) (*gin.Engine, error) {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("ginserver: parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/assets", assetsFileSystem())

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	site := router.Group("/")
	if h.Session != nil {
		site.Use(h.Session)
	}
	if h.Pages != nil {
		site.GET("/", h.Pages.Home)
		site.GET("/about", h.Pages.About)
	}
	if h.Auth != nil {
		site.GET("/login", h.Auth.LoginPage)
		site.POST("/login", h.Auth.Login)
		site.POST("/logout", h.Auth.Logout)
	}

	protected := site.Group("/", RequirePage())
	if h.Dashboard != nil {
		protected.GET("/dashboard", h.Dashboard.Show)
		protected.POST("/dashboard", h.Dashboard.Submit)
	}
	if h.Department != nil {
		protected.GET("/department", h.Department.Show)
		protected.POST("/department", h.Department.Submit)
		protected.POST("/department/import", h.Department.Import)
		protected.GET("/department/report.xlsx", h.Department.Report)
	}

	api := site.Group("/api/v1")
	if len(cfg.CORSOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	api.Use(RequireAPI())
	if h.FormsAPI != nil {
		formsGroup := api.Group("/forms")
		formsGroup.GET("/single", h.FormsAPI.Single)
		formsGroup.POST("/single/fields", h.FormsAPI.UpdateSingleField)
		formsGroup.GET("/batch", h.FormsAPI.Batch)
		formsGroup.POST("/batch/rows", h.FormsAPI.AddRow)
		formsGroup.DELETE("/batch/rows/:index", h.FormsAPI.RemoveRow)
		formsGroup.POST("/batch/rows/:index/fields", h.FormsAPI.UpdateRowField)
	}
	return router, nil
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) (*http.Server, error) {
	router, err := NewRouter(cfg, obsMW, health, h)
	if err != nil {
		return nil, err
	}
	key := []byte(cfg.CSRFKey)
	if len(key) == 0 {
		if key, err = security.RandomBytes(32); err != nil {
			return nil, err
		}
		if obsMW.Logger != nil {
			obsMW.Logger.Warn("CSRF_KEY not set, using a random key; form tokens reset on restart")
		}
	}
	handler := withCSRF(router, key, cfg.SessionCookieSecure)
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func withCSRF(next http.Handler, key []byte, secure bool) http.Handler {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(csrfFieldName),
		csrf.CookieName(csrfCookieName),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid or missing CSRF token, reload the page and try again", http.StatusForbidden)
		})),
	)(next)
	if secure {
		return protect
	}
	// without TLS the origin check must be told the request is plain http
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protect.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
