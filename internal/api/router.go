package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/member-system/docs"
	"github.com/99minutos/member-system/internal/api/handler"
	"github.com/99minutos/member-system/internal/api/metrics"
	"github.com/99minutos/member-system/internal/api/middleware"
	"github.com/99minutos/member-system/internal/core/ports"
	"github.com/99minutos/member-system/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Members ports.MemberService
	Tokens  ports.TokenService
	// Revoker is optional; without it tokens of deleted members stay valid
	// until they expire.
	Revoker ports.TokenRevoker
	// Readiness serves GET /health/ready. Optional in tests.
	Readiness echo.HandlerFunc
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every request passes, in order: recover, request id, logging, metrics,
// authentication, then the authorization policy.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.RequestMetrics())
	e.Use(middleware.Authenticate(d.Tokens, d.Revoker, d.Log))
	e.Use(middleware.Authorize(middleware.DefaultRules()))

	members := handler.NewMemberHandler(d.Members, d.Log)
	auth := handler.NewAuthHandler(d.Members, d.Log)

	// --- Member routes ---
	e.GET("/users", members.List)
	e.POST("/users", members.Create)
	e.DELETE("/users/:id", members.Delete)

	// --- Auth routes ---
	e.POST("/auth/login", auth.Login)
	e.GET("/me", handler.Me)

	// --- Operational routes (public in the policy table) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness)
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
