package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/middleware"
)

// TestSessionID is the cart session used by NewTestContext.
const TestSessionID = "7b3c1f52-0d9e-4a61-b8a4-2e6f9c0d1a35"

// NewTestContext creates a new Echo context for testing. The request carries
// the TestSessionID cookie.
func NewTestContext(method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: TestSessionID})

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	return c, rec
}

// SetParams sets route params on a test context.
func SetParams(c echo.Context, names []string, values []string) {
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

// AssertJSONResponse checks if the response is valid JSON and returns the parsed body
func AssertJSONResponse(rec *httptest.ResponseRecorder) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
