package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/bundle"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAssembler() *bundle.Assembler {
	return bundle.NewAssembler(quietLogger(), nil)
}

// requireHTTPError asserts a handler returned a mapped error and hands back
// its body.
func requireHTTPError(t *testing.T, err error, status int) apperr.Body {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, status, he.Code)
	body, _ := he.Message.(apperr.Body)
	return body
}

func seedCart(t *testing.T, store cart.Store, items ...cart.LineItem) {
	t.Helper()
	require.NoError(t, store.AddBatch(context.Background(), TestSessionID, items))
}

func navyHoodie(t *testing.T) cart.LineItem {
	t.Helper()
	entry, err := catalog.Lookup(catalog.VariantRef{Category: catalog.CategoryHoodie, ID: 5541})
	require.NoError(t, err)
	return SingleItem(entry, 1)
}

func decodeJSON(rec *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rec.Body).Decode(v)
}

func readCloser(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}
