// Package cache holds the public tracker-view cache. The track endpoint is
// unauthenticated and the hottest read path, so views are cached briefly in
// Redis. Keys are ticket ids only; PNR digits never appear in a key or value.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"civiceye/internal/complaint/models"
)

const trackerKeyPrefix = "tracker:ticket:"

// TrackerCache is the lookup interface the complaint service consumes.
type TrackerCache interface {
	Get(ctx context.Context, ticketID string) (models.TrackerView, bool, error)
	Set(ctx context.Context, view models.TrackerView, ttl time.Duration) error
	Invalidate(ctx context.Context, ticketID string) error
}

// RedisTrackerCache stores tracker views in Redis with a short TTL.
type RedisTrackerCache struct {
	client *redis.Client
}

func NewRedisTrackerCache(client *redis.Client) *RedisTrackerCache {
	return &RedisTrackerCache{client: client}
}

func (c *RedisTrackerCache) Get(ctx context.Context, ticketID string) (models.TrackerView, bool, error) {
	raw, err := c.client.Get(ctx, trackerKeyPrefix+ticketID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.TrackerView{}, false, nil
	}
	if err != nil {
		return models.TrackerView{}, false, fmt.Errorf("tracker cache get: %w", err)
	}
	var view models.TrackerView
	if err := json.Unmarshal(raw, &view); err != nil {
		// Treat a corrupt entry as a miss; the store read will overwrite it.
		return models.TrackerView{}, false, nil
	}
	return view, true, nil
}

func (c *RedisTrackerCache) Set(ctx context.Context, view models.TrackerView, ttl time.Duration) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("tracker cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, trackerKeyPrefix+view.TicketID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("tracker cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached view after a status transition so trackers see
// the new status immediately instead of after TTL expiry.
func (c *RedisTrackerCache) Invalidate(ctx context.Context, ticketID string) error {
	if err := c.client.Del(ctx, trackerKeyPrefix+ticketID).Err(); err != nil {
		return fmt.Errorf("tracker cache invalidate: %w", err)
	}
	return nil
}

// NopTrackerCache satisfies TrackerCache when Redis is not configured.
type NopTrackerCache struct{}

func (NopTrackerCache) Get(context.Context, string) (models.TrackerView, bool, error) {
	return models.TrackerView{}, false, nil
}
func (NopTrackerCache) Set(context.Context, models.TrackerView, time.Duration) error { return nil }
func (NopTrackerCache) Invalidate(context.Context, string) error                     { return nil }
