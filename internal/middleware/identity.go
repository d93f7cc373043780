package middleware

// identity.go holds the helpers that read the authenticated user back out
// of the echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-backend/internal/model"
)

const userKey = "user"

// CurrentUser returns the user stored by BearerAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}
