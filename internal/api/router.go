package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/instroom/instroom-web/docs"
	"github.com/instroom/instroom-web/internal/api/handler"
	"github.com/instroom/instroom-web/internal/api/middleware"
	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
	"github.com/instroom/instroom-web/internal/core/service"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Accounts ports.AccountService
	Sessions ports.SessionCodec
	Guard    *service.AuthGuard
	// Readiness lists the dependencies checked by /health/ready, keyed by name.
	Readiness map[string]handler.Pinger
	Logger    zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	log := deps.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "instroom",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Sessions, deps.Guard, log)
	pageHandler := handler.NewPageHandler(deps.Guard)
	healthHandler := handler.NewHealthHandler(deps.Readiness)

	login := middleware.DefaultLoginPath
	requireAuth := middleware.RequireAuth(deps.Guard, login)

	// --- Public pages ---
	e.GET("/", pageHandler.Landing)
	e.GET(login, pageHandler.Public("login"))
	e.GET("/signup", pageHandler.Public("signup"))

	// --- Auth ---
	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me)
	auth.GET("/access", authHandler.Access)
	auth.POST("/session/extend", authHandler.Extend)

	// --- Guarded pages ---
	e.GET("/dashboard", pageHandler.Shell("dashboard"), middleware.RequirePermission(deps.Guard, login, domain.PermViewDashboard))
	e.GET("/analytics", pageHandler.Shell("analytics"), middleware.RequirePermission(deps.Guard, login, domain.PermViewAnalytics))
	e.GET("/team", pageHandler.Shell("team"), middleware.RequirePermission(deps.Guard, login, domain.PermManageTeamMembers))
	e.GET("/admin/users", pageHandler.Shell("admin-users"), middleware.RequireRole(deps.Guard, login, domain.RoleAdmin))
	e.GET("/settings", pageHandler.Shell("settings"), requireAuth)
	e.GET("/billing", pageHandler.Shell("billing"), requireAuth)
	e.GET("/contact-support", pageHandler.Shell("contact-support"), requireAuth)

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
