package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-backend/internal/logging"
)

// RequestLogger logs one line per request. It must run after echo's
// RequestID middleware: the request id becomes the trace_id of every record
// logged with the request context.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = req.Header.Get(echo.HeaderXRequestID)
			}
			ctx := logging.WithTraceID(req.Context(), id)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// let echo's error handler set the status before we read it
				c.Error(err)
			}

			status := c.Response().Status
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			log.Log(ctx, level, "request",
				"method", req.Method,
				"path", c.Path(),
				"status", status,
				"latency", time.Since(start),
				"remote_ip", c.RealIP(),
			)
			return nil
		}
	}
}
