package server

import (
	"net/http"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/cookie"
	"github.com/MrEthical07/goAccount/metrics/export/prometheus"
	"github.com/MrEthical07/goAccount/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds HTTP-only settings.
type Config struct {
	CORSOrigins    []string
	RequestsPerSec float64
	RequestBurst   int
	Logger         zerolog.Logger
}

type handlers struct {
	engine *goAccount.Engine
	policy cookie.Policy
	logger zerolog.Logger
}

// New builds the echo instance with every route mounted.
func New(engine *goAccount.Engine, cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(cfg.Logger)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(cfg.Logger))
	e.Use(echomw.Recover())
	e.Use(securityHeaders())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echo.WrapMiddleware(cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler))
	}
	e.Use(requestContext())

	h := &handlers{engine: engine, policy: engine.CookiePolicy(), logger: cfg.Logger}

	e.GET("/healthz", h.health)
	e.GET("/metrics", echo.WrapHandler(prometheus.NewExporter(engine).Handler()))

	var limited []echo.MiddlewareFunc
	if cfg.RequestsPerSec > 0 {
		limited = append(limited, newIPRateLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestBurst).middleware())
	}

	auth := e.Group("/auth", limited...)
	auth.POST("/login", h.login)
	auth.POST("/social", h.socialLogin)
	auth.POST("/reissue", h.reissue)
	auth.POST("/logout", h.logout)

	users := e.Group("/users", limited...)
	users.POST("", h.register)
	users.GET("/exists", h.exists)

	guard := echo.WrapMiddleware(middleware.Guard(engine))
	users.GET("", h.listUsers, guard)
	users.GET("/me", h.me, guard)
	users.GET("/:id", h.getUser, guard)
	users.PATCH("/me/password", h.updatePassword, guard)
	users.PATCH("/me/address", h.updateAddress, guard)
	users.PATCH("/me/name", h.updateName, guard)
	users.PATCH("/me/drop", h.updateDrop, guard)
	users.PATCH("/me/temp", h.updateTemp, guard)

	return e
}
