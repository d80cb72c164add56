package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSessionIssuesCookie(t *testing.T) {
	e := echo.New()
	var seen string
	h := CartSession()(func(c echo.Context) error {
		seen = SessionID(c)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartSessionKeepsExistingCookie(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantReuse bool
	}{
		{"valid uuid", "5f0c1d2e-8a6b-4c3d-9e7f-0a1b2c3d4e5f", true},
		{"garbage", "not-a-session", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.value})
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			h := CartSession()(func(c echo.Context) error {
				seen = SessionID(c)
				return nil
			})
			require.NoError(t, h(c))

			assert.Equal(t, tt.wantReuse, seen == tt.value)
			assert.Equal(t, tt.wantReuse, len(rec.Result().Cookies()) == 0)
		})
	}
}

func TestRequestLoggerRecordsFinalStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"path":"/missing"`)
}

func TestRequestLoggerAddsSessionAndErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.Use(CartSession())
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("database is locked")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "5b0d2a6e-2f4c-4a8e-9d0b-6f3e1c2a7b10"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"session_id":"5b0d2a6e-2f4c-4a8e-9d0b-6f3e1c2a7b10"`)
	assert.Contains(t, buf.String(), `"error":"database is locked"`)
}
