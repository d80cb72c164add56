package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request, with the cart session when one
// is set. Server errors log at ERROR with the cause.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let echo write the response so the status below is final.
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration", time.Since(start),
				"ip", c.RealIP(),
			}
			if id, ok := c.Get(sessionKey).(string); ok && id != "" {
				attrs = append(attrs, "session_id", id)
			}
			if err != nil && status >= http.StatusInternalServerError {
				attrs = append(attrs, "error", err)
				logger.Error("request failed", attrs...)
				return nil
			}
			logger.Info("request handled", attrs...)
			return nil
		}
	}
}

// SecurityHeaders sets the default browser hardening headers.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			return next(c)
		}
	}
}
