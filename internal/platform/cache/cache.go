// Package cache keeps parsed recipes in Redis keyed by source URL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"recipebox/internal/recipe"
)

const keyPrefix = "recipe:url:"

// Cache is a Redis-backed recipe cache. A nil *Cache is valid and never hits.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr and checks the connection.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Key returns the Redis key for a source URL.
func Key(sourceURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(sourceURL)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached recipe for sourceURL. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, sourceURL string) (*recipe.Recipe, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, Key(sourceURL)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}

	var r recipe.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	return &r, true, nil
}

// Set stores r for sourceURL with the configured TTL.
func (c *Cache) Set(ctx context.Context, sourceURL string, r *recipe.Recipe) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := c.client.Set(ctx, Key(sourceURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
