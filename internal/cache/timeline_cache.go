package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TimelineCache keeps rendered timeline views per user for a short TTL. It
// is strictly best-effort: every failure is reported to the caller so it can
// be logged, but the caller never aborts on it.
type TimelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTimelineCache(client *redis.Client, ttl time.Duration) *TimelineCache {
	return &TimelineCache{client: client, ttl: ttl}
}

func timelineKey(userID string) string {
	return "timeline:" + userID
}

func (c *TimelineCache) Get(ctx context.Context, userID string, out any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	payload, err := c.client.Get(ctx, timelineKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *TimelineCache) Set(ctx context.Context, userID string, view any) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, timelineKey(userID), payload, c.ttl).Err()
}

// Invalidate drops the cached view after a timeline write.
func (c *TimelineCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, timelineKey(userID)).Err()
}
