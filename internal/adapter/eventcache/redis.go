package eventcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artmarket/settlement/internal/domain/model"
)

const defaultTTL = 48 * time.Hour

// Cache remembers processed webhook event ids so redelivered events can be
// acknowledged without touching the settlement path. It is an advisory fast
// path only; the settlement transaction stays the source of truth, so cache
// failures degrade to "not seen".
type Cache interface {
	// MarkSeen records the event id and reports whether it was already known.
	MarkSeen(ctx context.Context, provider model.Provider, eventID string) (bool, error)
	// Forget drops a recorded id so the provider's redelivery is processed
	// again. Called when settlement fails after the id was recorded.
	Forget(ctx context.Context, provider model.Provider, eventID string) error
}

// RedisCache implements Cache on a shared redis instance, usable across
// service replicas.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redis at addr.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultTTL,
	}
}

// MarkSeen uses SETNX so concurrent deliveries resolve to one winner.
func (c *RedisCache) MarkSeen(ctx context.Context, provider model.Provider, eventID string) (bool, error) {
	created, err := c.client.SetNX(ctx, eventKey(provider, eventID), 1, c.ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

// Forget deletes the dedup key for the event.
func (c *RedisCache) Forget(ctx context.Context, provider model.Provider, eventID string) error {
	return c.client.Del(ctx, eventKey(provider, eventID)).Err()
}

func eventKey(provider model.Provider, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", provider, eventID)
}

// Close releases the redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NopCache is used when no redis address is configured; every event looks
// new and deduplication falls back to the settlement idempotency guard.
type NopCache struct{}

func (NopCache) MarkSeen(context.Context, model.Provider, string) (bool, error) {
	return false, nil
}

func (NopCache) Forget(context.Context, model.Provider, string) error {
	return nil
}
