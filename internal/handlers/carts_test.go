package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/loganlanou/merch-storefront/internal/bundle"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartHandlerAddUpdateRemove(t *testing.T) {
	store := cart.NewMemoryStore()
	h := NewCartHandler(store, testAssembler())
	ctx := context.Background()

	add := AddToCartRequest{Category: "hoodie", Size: "L", Color: "Navy"}
	for i := 0; i < 2; i++ {
		c, rec := NewTestContext(http.MethodPost, "/api/cart/items", add)
		require.NoError(t, h.HandleAddItem(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	current, err := store.Get(ctx, TestSessionID)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, "hoodie:5541", current.Items[0].ID)
	assert.Equal(t, "5541", current.Items[0].PrintfulVariantID)
	assert.Equal(t, 2, current.Items[0].Quantity)
	assert.Equal(t, "79.98", current.TotalPrice().StringFixed(2))

	c, rec := NewTestContext(http.MethodPut, "/api/cart/items/:id", UpdateQuantityRequest{Quantity: 3})
	SetParams(c, []string{"id"}, []string{"hoodie%3A5541"})
	require.NoError(t, h.HandleUpdateItem(c))
	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, float64(3), body["total_items"])
	assert.Equal(t, "£119.97", body["formatted_total"])

	c, _ = NewTestContext(http.MethodDelete, "/api/cart/items/:id", nil)
	SetParams(c, []string{"id"}, []string{"hoodie:9999"})
	requireHTTPError(t, h.HandleRemoveItem(c), http.StatusNotFound)

	c, _ = NewTestContext(http.MethodDelete, "/api/cart/items/:id", nil)
	SetParams(c, []string{"id"}, []string{"hoodie:5541"})
	require.NoError(t, h.HandleRemoveItem(c))

	current, err = store.Get(ctx, TestSessionID)
	require.NoError(t, err)
	assert.Empty(t, current.Items)
}

func TestCartHandlerRejectsBadItems(t *testing.T) {
	h := NewCartHandler(cart.NewMemoryStore(), testAssembler())

	tests := []struct {
		name       string
		req        AddToCartRequest
		wantStatus int
	}{
		{"missing category", AddToCartRequest{Color: "Navy"}, http.StatusBadRequest},
		{"negative quantity", AddToCartRequest{Category: "mug", Quantity: -1}, http.StatusBadRequest},
		{"unknown category", AddToCartRequest{Category: "poster"}, http.StatusNotFound},
		{"unknown color", AddToCartRequest{Category: "cap", Color: "Plaid"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewTestContext(http.MethodPost, "/api/cart/items", tt.req)
			requireHTTPError(t, h.HandleAddItem(c), tt.wantStatus)
		})
	}
}

func championRequest() AddBundleRequest {
	return AddBundleRequest{Selections: map[string]bundle.Selection{
		"hoodie":  {Design: "DARK", Size: "L", Color: "Navy"},
		"t-shirt": {Size: "M", Color: "White"},
		"cap":     {Color: "Navy"},
		"tote":    {},
	}}
}

func newBundleHandler(t *testing.T, store cart.Store) *BundleHandler {
	t.Helper()
	pricing, err := bundle.DefaultPricing()
	require.NoError(t, err)
	return NewBundleHandler(pricing, testAssembler(), store, quietLogger())
}

func TestBundleAddToCart(t *testing.T) {
	store := cart.NewMemoryStore()
	h := newBundleHandler(t, store)

	c, rec := NewTestContext(http.MethodPost, "/api/bundles/:id/cart", championRequest())
	SetParams(c, []string{"id"}, []string{"champion-bundle"})
	require.NoError(t, h.HandleAddToCart(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	current, err := store.Get(context.Background(), TestSessionID)
	require.NoError(t, err)
	require.Len(t, current.Items, 5)
	assert.Equal(t, "93.99", current.TotalPrice().StringFixed(2))
	assert.Equal(t, "109.96", current.Subtotal().StringFixed(2))

	discount := current.Items[4]
	assert.True(t, discount.IsDiscount)
	assert.Equal(t, "discount-champion", discount.PrintfulVariantID)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, "15.97", body["savings"])

	// Removing the bundle takes the discount line with it.
	c, _ = NewTestContext(http.MethodDelete, "/api/cart/bundles/:bundleId", nil)
	SetParams(c, []string{"bundleId"}, []string{discount.BundleID})
	require.NoError(t, NewCartHandler(store, testAssembler()).HandleRemoveBundle(c))

	current, err = store.Get(context.Background(), TestSessionID)
	require.NoError(t, err)
	assert.Empty(t, current.Items)
}

func TestBundleAddToCartIsAllOrNothing(t *testing.T) {
	store := cart.NewMemoryStore()
	seedCart(t, store, navyHoodie(t))
	h := newBundleHandler(t, store)

	req := championRequest()
	req.Selections["hoodie"] = bundle.Selection{Size: "L", Color: "Teal"}
	c, _ := NewTestContext(http.MethodPost, "/api/bundles/:id/cart", req)
	SetParams(c, []string{"id"}, []string{"champion"})

	body := requireHTTPError(t, h.HandleAddToCart(c), http.StatusUnprocessableEntity)
	assert.Equal(t, "Unable to add Hoodie — missing variant information", body.Error)

	current, err := store.Get(context.Background(), TestSessionID)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, "hoodie:5541", current.Items[0].ID)
}

func TestBundleEndpointsWhilePricingIsMissing(t *testing.T) {
	h := NewBundleHandler(bundle.NewPricing(), testAssembler(), cart.NewMemoryStore(), quietLogger())

	c, rec := NewTestContext(http.MethodGet, "/api/bundles/:id", nil)
	SetParams(c, []string{"id"}, []string{"champion"})
	requireHTTPError(t, h.HandleGetBundle(c), http.StatusServiceUnavailable)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))

	c, _ = NewTestContext(http.MethodPost, "/api/bundles/:id/cart", championRequest())
	SetParams(c, []string{"id"}, []string{"champion"})
	requireHTTPError(t, h.HandleAddToCart(c), http.StatusServiceUnavailable)

	c, _ = NewTestContext(http.MethodGet, "/api/bundles/:id", nil)
	SetParams(c, []string{"id"}, []string{"poster"})
	requireHTTPError(t, newBundleHandler(t, cart.NewMemoryStore()).HandleGetBundle(c), http.StatusNotFound)
}

func TestCartHandlerKeepsBundleLinesTogether(t *testing.T) {
	store := cart.NewMemoryStore()
	h := NewCartHandler(store, testAssembler())
	ctx := context.Background()

	c, _ := NewTestContext(http.MethodPost, "/api/bundles/:id/cart", championRequest())
	SetParams(c, []string{"id"}, []string{"champion"})
	require.NoError(t, newBundleHandler(t, store).HandleAddToCart(c))
	seedCart(t, store, navyHoodie(t))

	current, err := store.Get(ctx, TestSessionID)
	require.NoError(t, err)
	require.Len(t, current.Items, 6)
	hoodie, discount := current.Items[0], current.Items[4]
	require.True(t, discount.IsDiscount)

	c, _ = NewTestContext(http.MethodPut, "/api/cart/items/:id", UpdateQuantityRequest{Quantity: 10})
	SetParams(c, []string{"id"}, []string{discount.ID})
	requireHTTPError(t, h.HandleUpdateItem(c), http.StatusBadRequest)

	c, _ = NewTestContext(http.MethodPut, "/api/cart/items/:id", UpdateQuantityRequest{Quantity: 2})
	SetParams(c, []string{"id"}, []string{hoodie.ID})
	requireHTTPError(t, h.HandleUpdateItem(c), http.StatusBadRequest)

	c, rec := NewTestContext(http.MethodDelete, "/api/cart/items/:id", nil)
	SetParams(c, []string{"id"}, []string{hoodie.ID})
	require.NoError(t, h.HandleRemoveItem(c))
	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, float64(1), body["total_items"])

	current, err = store.Get(ctx, TestSessionID)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, "hoodie:5541", current.Items[0].ID)
	assert.Equal(t, "39.99", current.TotalPrice().StringFixed(2))
}
