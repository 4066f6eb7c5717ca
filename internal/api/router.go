package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/adonwheels/identity-api/docs" // registers the OpenAPI document
	"github.com/adonwheels/identity-api/internal/api/handler"
	"github.com/adonwheels/identity-api/internal/api/middleware"
	"github.com/adonwheels/identity-api/internal/core/domain"
	"github.com/adonwheels/identity-api/internal/core/ports"
)

// RouterDeps carries everything NewRouter needs.
type RouterDeps struct {
	Identity ports.IdentityService
	Log      zerolog.Logger

	// Readiness checks keyed by dependency name.
	Checks map[string]handler.PingFunc

	// Defaults to the global Prometheus registry when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	// Outside the request logger so it observes the status written by the error handler.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))
	e.Use(middleware.RequestLogger(deps.Log))

	authHandler := handler.NewAuthHandler(deps.Identity)
	accountHandler := handler.NewAccountHandler(deps.Identity)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	e.GET("/api/me", accountHandler.Me, middleware.Auth(deps.Identity, ""))

	admin := e.Group("/api/admin", middleware.Auth(deps.Identity, domain.KindAdmin))
	admin.GET("/publishers", accountHandler.ListPublishers)
	admin.GET("/bodyshops", accountHandler.ListBodyShops)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
