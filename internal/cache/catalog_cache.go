package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"audio-vectorize/internal/model"
)

// CatalogCache keeps the database/collection listing per owner email.
type CatalogCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redisv9.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) GetListing(ctx context.Context, email string) ([]model.DatabaseCollection, bool, error) {
	raw, err := c.client.Get(ctx, c.listingKey(email)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get listing failed: %w", err)
	}

	var pairs []model.DatabaseCollection
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached listing failed: %w", err)
	}
	return pairs, true, nil
}

func (c *CatalogCache) SetListing(ctx context.Context, email string, pairs []model.DatabaseCollection) error {
	payload, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("marshal listing cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.listingKey(email), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set listing failed: %w", err)
	}
	return nil
}

func (c *CatalogCache) Invalidate(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, c.listingKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete listing failed: %w", err)
	}
	return nil
}

func (c *CatalogCache) listingKey(email string) string {
	return "catalog:listing:" + strings.ToLower(strings.TrimSpace(email))
}
