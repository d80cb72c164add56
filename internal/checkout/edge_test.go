package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEdgeServer(t *testing.T, handler http.HandlerFunc) *EdgeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEdgeClient(srv.URL+"/functions/v1/", "anon-key", time.Second, nil)
}

func TestEdgeCreatePaymentIntent(t *testing.T) {
	var got PaymentIntentRequest
	client := newEdgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/create-payment-intent", r.URL.Path)
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(PaymentIntentResponse{
			ClientSecret:    "pi_123_secret",
			Amount:          9798,
			Currency:        "gbp",
			ShippingCost:    3.99,
			Subtotal:        93.99,
			Total:           97.98,
			PaymentIntentID: "pi_123",
		})
	})

	resp, err := client.CreatePaymentIntent(context.Background(), PaymentIntentRequest{
		Items:         []PaymentItem{{ID: "a", Name: "Hoodie", Price: 39.99, Quantity: 1, PrintfulVariantID: "5541", ProductType: ProductTypeBundle}},
		CustomerEmail: "jo@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", resp.PaymentIntentID)
	assert.Equal(t, int64(9798), resp.Amount)
	assert.Equal(t, "jo@example.com", got.CustomerEmail)
	assert.Equal(t, "5541", got.Items[0].PrintfulVariantID)
}

func TestEdgeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"http error with details", http.StatusInternalServerError, `{"error":"boom","details":"stripe unavailable"}`, "create-payment-intent error: 500 - stripe unavailable"},
		{"http error without body", http.StatusBadGateway, ``, "create-payment-intent error: 502 - Bad Gateway"},
		{"error in success body", http.StatusOK, `{"error":"no items"}`, "create-payment-intent error: no items"},
		{"empty data", http.StatusOK, `{}`, "no data returned from payment intent function"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newEdgeServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.CreatePaymentIntent(context.Background(), PaymentIntentRequest{})
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeDependency, ae.Code())
			assert.Equal(t, tt.wantMsg, ae.Message())
		})
	}
}

func TestEdgeShippingQuotes(t *testing.T) {
	client := newEdgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/shipping-quotes", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		items := req["items"].([]any)
		assert.Equal(t, float64(5541), items[0].(map[string]any)["printful_variant_id"])
		_, _ = w.Write([]byte(`{"options":[{"id":"STANDARD","name":"Flat Rate","rate":"4.49","currency":"GBP","minDeliveryDays":2,"maxDeliveryDays":7}]}`))
	})

	resp, err := client.ShippingQuotes(context.Background(), ShippingQuoteRequest{
		Recipient: Address{Address1: "1 High St", City: "Leeds", CountryCode: "GB", Zip: "LS1"},
		Items:     []ShippingItem{{PrintfulVariantID: ParseVariantID("5541"), Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, "4.49", resp.Options[0].Rate.StringFixed(2))
	assert.Equal(t, 7, resp.Options[0].MaxDeliveryDays)

	bad := newEdgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ttlSeconds":300}`))
	})
	_, err = bad.ShippingQuotes(context.Background(), ShippingQuoteRequest{})
	assert.ErrorContains(t, err, "invalid response from shipping API")
}

func TestEdgeNotConfigured(t *testing.T) {
	client := NewEdgeClient("", "", 0, nil)
	assert.False(t, client.Configured())
	_, err := client.ConfirmPaymentIntent(context.Background(), ConfirmRequest{PaymentIntentID: "pi_1"})
	assert.ErrorIs(t, err, ErrEdgeNotConfigured)
}

func TestEdgeHonoursContext(t *testing.T) {
	client := newEdgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.ConfirmPaymentIntent(ctx, ConfirmRequest{PaymentIntentID: "pi_1"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDependency, apperr.As(err).Code())
}
