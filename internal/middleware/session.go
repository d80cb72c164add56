package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "session_id"
	sessionKey    = "cart_session"
	sessionMaxAge = 86400 * 30
)

// CartSession makes sure every request carries a session_id cookie so the
// cart can follow the shopper between pages. New IDs are set on the
// response immediately.
func CartSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(sessionKey, getOrCreateSessionID(c))
			return next(c)
		}
	}
}

// SessionID returns the cart session for the request. Handlers mounted
// without CartSession still get one from the cookie, or a fresh one.
func SessionID(c echo.Context) string {
	if id, ok := c.Get(sessionKey).(string); ok && id != "" {
		return id
	}
	id := getOrCreateSessionID(c)
	c.Set(sessionKey, id)
	return id
}

func getOrCreateSessionID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookie)
	if err == nil && cookie.Value != "" {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	sessionID := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}
