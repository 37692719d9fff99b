package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
)

// Cache stores computed timetables. Every write to a court's schedules,
// promotions or bookings bumps the court's version, which orphans all of its
// cached entries at once.
type Cache interface {
	// Get returns the cached timetable, or nil on a miss, together with the
	// version the lookup saw. The version is passed back to Set.
	Get(ctx context.Context, courtID string, start, end time.Time) (*Timetable, string, error)
	Set(ctx context.Context, version string, t *Timetable, start, end time.Time) error
	Invalidate(ctx context.Context, courtID string) error
}

const keyPrefix = "availability"

// RedisCache is the Redis implementation of Cache.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func versionKey(courtID string) string {
	return keyPrefix + ":v:" + courtID
}

func entryKey(courtID, version string, start, end time.Time) string {
	return fmt.Sprintf("%s:t:%s:%s:%s:%s", keyPrefix, courtID, version,
		start.Format(request.DateLayout), end.Format(request.DateLayout))
}

func (c *RedisCache) version(ctx context.Context, courtID string) (string, error) {
	v, err := c.client.Get(ctx, versionKey(courtID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("read availability version: %w", err)
	}
	return v, nil
}

func (c *RedisCache) Get(ctx context.Context, courtID string, start, end time.Time) (*Timetable, string, error) {
	v, err := c.version(ctx, courtID)
	if err != nil {
		return nil, "", err
	}

	raw, err := c.client.Get(ctx, entryKey(courtID, v, start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, v, nil
	}
	if err != nil {
		return nil, v, fmt.Errorf("read availability entry: %w", err)
	}

	var t Timetable
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, v, fmt.Errorf("decode availability entry: %w", err)
	}
	return &t, v, nil
}

func (c *RedisCache) Set(ctx context.Context, version string, t *Timetable, start, end time.Time) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode availability entry: %w", err)
	}
	if err := c.client.Set(ctx, entryKey(t.CourtID, version, start, end), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write availability entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, courtID string) error {
	if err := c.client.Incr(ctx, versionKey(courtID)).Err(); err != nil {
		return fmt.Errorf("bump availability version: %w", err)
	}
	return nil
}
