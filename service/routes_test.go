package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublicRoutes checks that the read-only routes exist and answer
func TestPublicRoutes(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Health check", "GET", "/health", http.StatusOK},
		{"Metrics", "GET", "/metrics", http.StatusOK},

		// Catalog
		{"Product list", "GET", "/api/catalog", http.StatusOK},
		{"Hoodie options", "GET", "/api/catalog/hoodie", http.StatusOK},
		{"Variant lookup", "GET", "/api/catalog/hoodie/variant?size=L&color=Navy", http.StatusOK},
		{"Reverse lookup", "GET", "/api/catalog/mug/variants/10000", http.StatusOK},
		{"Swatch", "GET", "/api/catalog/cap/swatch/Navy", http.StatusOK},
		{"Unknown product", "GET", "/api/catalog/poster", http.StatusNotFound},

		// Bundles
		{"Bundle list", "GET", "/api/bundles", http.StatusOK},
		{"Champion bundle", "GET", "/api/bundles/champion", http.StatusOK},
		{"Unknown bundle", "GET", "/api/bundles/legend", http.StatusNotFound},

		// Cart
		{"Empty cart", "GET", "/api/cart", http.StatusOK},
		{"Checkout validate", "POST", "/api/checkout/validate", http.StatusOK},

		{"Unknown route", "GET", "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code,
				"Route %s %s should return %d, got %d",
				tt.method, tt.path, tt.wantStatus, rec.Code)
		})
	}
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

type cartBody struct {
	Items []struct {
		ID         string `json:"id"`
		IsDiscount bool   `json:"isDiscount"`
	} `json:"items"`
	Total string `json:"total"`
}

// TestBundleCheckoutFlow adds a bundle, quotes shipping, and clears the cart
// through the payment webhook.
func TestBundleCheckoutFlow(t *testing.T) {
	e, _ := setupTestEcho(t)

	addBundle := map[string]any{"selections": map[string]any{
		"hoodie":  map[string]string{"size": "L", "color": "Navy"},
		"tshirt":  map[string]string{"size": "M", "color": "White"},
		"cap":     map[string]string{"color": "Navy"},
		"tote":    map[string]string{},
	}}
	rec := doJSON(t, e, http.MethodPost, "/api/bundles/champion/cart", addBundle, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)

	rec = doJSON(t, e, http.MethodGet, "/api/cart", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 5)
	assert.True(t, cart.Items[4].IsDiscount)
	assert.Equal(t, "93.99", cart.Total)

	recipient := map[string]any{"recipient": map[string]string{
		"name": "Jo Bloggs", "address1": "1 High St", "city": "Leeds", "country_code": "GB", "zip": "LS1 1AA",
	}}
	rec = doJSON(t, e, http.MethodPost, "/api/shipping/rates", recipient, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote struct {
		Options []struct {
			MinDeliveryDays int `json:"minDeliveryDays"`
			MaxDeliveryDays int `json:"maxDeliveryDays"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	require.Len(t, quote.Options, 3)
	for _, o := range quote.Options {
		assert.Equal(t, 3, o.MinDeliveryDays)
		assert.Equal(t, 5, o.MaxDeliveryDays)
	}

	event := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{` +
		`"id":"pi_1","object":"payment_intent","status":"succeeded","amount":9798,"currency":"gbp",` +
		`"metadata":{"cart_session":"` + cookie.Value + `"}}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewBufferString(event))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodGet, "/api/cart", nil, cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
}

func TestBundleFailureLeavesCartUntouched(t *testing.T) {
	e, _ := setupTestEcho(t)

	addBundle := map[string]any{"selections": map[string]any{
		"hoodie": map[string]string{"size": "L", "color": "Teal"},
		"tshirt": map[string]string{"size": "M", "color": "White"},
	}}
	rec := doJSON(t, e, http.MethodPost, "/api/bundles/champion/cart", addBundle, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unable to add Hoodie")
	cookie := sessionCookie(t, rec)

	rec = doJSON(t, e, http.MethodGet, "/api/cart", nil, cookie)
	var cart cartBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
}
