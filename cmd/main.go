package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	mw "github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/loganlanou/merch-storefront/service"
	"github.com/loganlanou/merch-storefront/storage"
)

func main() {
	// slog is configured in slog.go via init()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	config, err := service.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := storage.New(config.DBPath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mw.RequestLogger(slog.Default()))
	e.Use(mw.SecurityHeaders())

	// Initialize service and register routes
	svc, err := service.New(ctx, db, config)
	if err != nil {
		slog.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()
	svc.Start(ctx)
	svc.RegisterRoutes(e)

	// Start server
	addr := fmt.Sprintf(":%s", config.Port)
	url := fmt.Sprintf("http://localhost:%s", config.Port)

	slog.Info("merch storefront starting",
		"url", url,
		"port", config.Port,
		"environment", config.Environment,
		"database", config.DBPath,
		"shipping_provider", config.Shipping.Provider,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
