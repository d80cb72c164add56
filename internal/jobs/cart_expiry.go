package jobs

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultCartTTL is how long an untouched cart is kept.
	DefaultCartTTL = 7 * 24 * time.Hour

	// ExpiryInterval is how often stale carts are swept.
	ExpiryInterval = time.Hour
)

type staleCartDeleter interface {
	DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type CartExpirer struct {
	store    staleCartDeleter
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	ticker   *time.Ticker
	done     chan bool
}

func NewCartExpirer(store staleCartDeleter, ttl time.Duration, logger *slog.Logger) *CartExpirer {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CartExpirer{
		store:    store,
		ttl:      ttl,
		interval: ExpiryInterval,
		logger:   logger,
		done:     make(chan bool),
	}
}

// Start begins the cart expiry background job
func (e *CartExpirer) Start(ctx context.Context) {
	e.logger.Info("starting cart expirer", "interval", e.interval, "ttl", e.ttl)

	e.sweep(ctx)

	e.ticker = time.NewTicker(e.interval)

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.sweep(ctx)
			case <-ctx.Done():
				e.logger.Info("cart expirer stopped", "reason", ctx.Err())
				return
			case <-e.done:
				e.logger.Info("cart expirer stopped")
				return
			}
		}
	}()
}

// Stop stops the background job
func (e *CartExpirer) Stop() {
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.done)
}

func (e *CartExpirer) sweep(ctx context.Context) int64 {
	n, err := e.store.DeleteStale(ctx, e.ttl)
	if err != nil {
		e.logger.Error("failed to delete stale carts", "error", err)
		return 0
	}
	if n > 0 {
		e.logger.Info("deleted stale carts", "count", n)
	}
	return n
}
