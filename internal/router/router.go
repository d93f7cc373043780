package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-backend/internal/config"
	"github.com/iliyamo/auth-backend/internal/handler"
	"github.com/iliyamo/auth-backend/internal/logging"
	"github.com/iliyamo/auth-backend/internal/middleware"
)

// Deps is everything the routes need. Redis may be nil, which disables
// rate limiting.
type Deps struct {
	Auth      *handler.AuthHandler
	Resolver  middleware.IdentityResolver
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Origins   []string
	Log       *slog.Logger
}

// New builds an echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.Origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	}))

	RegisterRoutes(e)
	RegisterUsers(e, d)
	return e
}

// RegisterRoutes registers routes that need no dependencies.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers mounts the user endpoints under /api/v1/users. Register,
// login and refresh share one rate limiter; /me requires a bearer token.
func RegisterUsers(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)

	g := e.Group("/api/v1/users")
	g.POST("", d.Auth.Register, limit)
	g.POST("/login", d.Auth.Login, limit)
	g.POST("/refresh", d.Auth.Refresh, limit)
	g.GET("/me", d.Auth.Me, middleware.BearerAuth(d.Resolver, d.Log))
}
