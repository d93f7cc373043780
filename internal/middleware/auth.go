package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-backend/internal/model"
	"github.com/iliyamo/auth-backend/internal/service"
)

// IdentityResolver turns an access token into the user it belongs to.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (model.User, error)
}

// BearerAuth requires an "Authorization: Bearer <access token>" header and
// stores the resolved user in the echo context. Handlers read it with
// CurrentUser.
func BearerAuth(r IdentityResolver, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			u, err := r.ResolveIdentity(c.Request().Context(), raw)
			switch {
			case err == nil:
			case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			default:
				if log != nil {
					log.ErrorContext(c.Request().Context(), "resolve identity failed", "error", err)
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			c.Set(userKey, u)
			return next(c)
		}
	}
}
