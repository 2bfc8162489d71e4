package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/focoshop/focoshop-be/internal/config"
	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const categoriesKey = "focoshop:categorias"

// Cache stores JSON values in Redis with a fixed TTL.
type Cache struct {
	db  *redis.Client
	ttl time.Duration
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	const op = "cache.New"
	db := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{db: db, ttl: cfg.TTL}, nil
}

// Get decodes the value at key into result. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set stores value at key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache.Set: %w", err)
	}
	return c.db.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate removes key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.db.Del(ctx, key).Err()
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.db.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetCategories returns the cached catalog. Redis errors count as a miss.
func (c *Cache) GetCategories(ctx context.Context) ([]models.Category, bool) {
	var categories []models.Category
	found, err := c.Get(ctx, categoriesKey, &categories)
	if err != nil {
		log.Warn().Err(err).Msg("Category cache read failed")
		return nil, false
	}
	return categories, found
}

// SetCategories caches the catalog.
func (c *Cache) SetCategories(ctx context.Context, categories []models.Category) {
	if err := c.Set(ctx, categoriesKey, categories); err != nil {
		log.Warn().Err(err).Msg("Category cache write failed")
	}
}

// InvalidateCategories drops the cached catalog.
func (c *Cache) InvalidateCategories(ctx context.Context) {
	if err := c.Invalidate(ctx, categoriesKey); err != nil {
		log.Warn().Err(err).Msg("Category cache invalidation failed")
	}
}
