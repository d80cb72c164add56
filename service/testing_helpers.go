package service

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/storage"
)

func testConfig() *Config {
	cfg := &Config{
		Environment: "development",
		Port:        "8080",
		Currency:    "gbp",
		CartTTL:     time.Hour,
	}
	cfg.Edge.Timeout = time.Second
	cfg.Shipping.Provider = ShippingProviderEasyPost
	cfg.Shipping.CacheTTL = 5 * time.Minute
	cfg.Shipping.FallbackTTL = time.Minute
	cfg.Shipping.FromCountry = "GB"
	return cfg
}

// setupTestService creates a service instance with an in-memory database for testing
func setupTestService(t *testing.T) *Service {
	t.Helper()

	store, cleanup, err := storage.NewTestStorage()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(cleanup)

	svc, err := New(context.Background(), store, testConfig())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	return svc
}

// setupTestEcho creates an Echo instance with routes registered
func setupTestEcho(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()

	svc := setupTestService(t)
	e := echo.New()
	svc.RegisterRoutes(e)

	return e, svc
}
