package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shop-backend/models"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cart cache miss")

// CartCache is a read-through cache for assembled cart views. Every cart
// mutation invalidates the owner's entry; the short TTL bounds how long a
// catalog price change can go unnoticed by cached reads.
type CartCache interface {
	Get(ctx context.Context, key string) (*models.CartView, error)
	Set(ctx context.Context, key string, view *models.CartView) error
	Delete(ctx context.Context, key string) error
}

const cartCacheTTL = 60 * time.Second

type redisCartCache struct {
	client *redis.Client
}

// NewCartCache degrades to a no-op when Redis is not connected.
func NewCartCache(client *redis.Client) CartCache {
	if client == nil {
		return noopCartCache{}
	}
	return &redisCartCache{client: client}
}

func (c *redisCartCache) cacheKey(key string) string {
	return "cart:" + key
}

func (c *redisCartCache) Get(ctx context.Context, key string) (*models.CartView, error) {
	data, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var view models.CartView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, ErrCacheMiss
	}
	return &view, nil
}

func (c *redisCartCache) Set(ctx context.Context, key string, view *models.CartView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.cacheKey(key), data, cartCacheTTL).Err()
}

func (c *redisCartCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.cacheKey(key)).Err()
}

type noopCartCache struct{}

func (noopCartCache) Get(context.Context, string) (*models.CartView, error) {
	return nil, ErrCacheMiss
}

func (noopCartCache) Set(context.Context, string, *models.CartView) error { return nil }

func (noopCartCache) Delete(context.Context, string) error { return nil }
