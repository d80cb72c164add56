package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCache keeps encoded quotes so every reader gets its own copy.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Quote, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !c.now().Before(entry.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	var quote Quote
	if err := json.Unmarshal(entry.raw, &quote); err != nil {
		return nil, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return &quote, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, quote *Quote, ttl time.Duration) error {
	raw, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{raw: raw, expires: c.now().Add(ttl)}
	return nil
}

type redisStore interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// RedisCache shares quotes between storefront instances.
type RedisCache struct {
	store redisStore
}

func NewRedisCache(store redisStore) *RedisCache {
	return &RedisCache{store: store}
}

// DialRedis parses a redis:// URL and verifies connectivity.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Quote, bool, error) {
	raw, err := c.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var quote Quote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		return nil, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return &quote, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, quote *Quote, ttl time.Duration) error {
	raw, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	if err := c.store.Set(ctx, key, string(raw), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
