package shipping

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.failGet != nil {
		return redis.NewStringResult("", m.failGet)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	quote := &Quote{Options: []Option{FallbackOption()}, TTLSeconds: 60}
	require.NoError(t, cache.Set(context.Background(), "k", quote, time.Minute))

	got, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3.99", got.Options[0].Rate.StringFixed(2))

	got.Options[0].Name = "changed"
	again, _, _ := cache.Get(context.Background(), "k")
	assert.Equal(t, "Standard Delivery", again.Options[0].Name)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	store := newMockCmdable()
	cache := NewRedisCache(store)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	quote := &Quote{Options: []Option{option("STANDARD", "4.49", 2, 7)}, TTLSeconds: 300}
	require.NoError(t, cache.Set(ctx, "shipping:GB::LS1:5541:1", quote, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, store.ttls["shipping:GB::LS1:5541:1"])
	assert.Contains(t, store.data["shipping:GB::LS1:5541:1"], `"rate":"4.49"`)

	got, ok, err := cache.Get(ctx, "shipping:GB::LS1:5541:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "STANDARD", got.Options[0].ID)
	assert.Equal(t, 300, got.TTLSeconds)

	store.failGet = errors.New("connection refused")
	_, _, err = cache.Get(ctx, "shipping:GB::LS1:5541:1")
	assert.ErrorContains(t, err, "connection refused")
}

func TestServiceTreatsCacheErrorsAsMiss(t *testing.T) {
	store := newMockCmdable()
	store.failGet = errors.New("connection refused")
	provider := &fakeProvider{resp: &checkout.ShippingQuoteResponse{Options: []Option{option("STANDARD", "4.49", 2, 7)}}}
	svc := NewService(provider, NewRedisCache(store), quietLogger())

	quote, err := svc.Quote(context.Background(), leedsRequest())
	require.NoError(t, err)
	assert.Equal(t, "STANDARD", quote.Options[0].ID)
	assert.Len(t, store.data, 1)
}
