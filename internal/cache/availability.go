package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// AvailabilityCache keeps computed slot lists in a Redis hash per calendar
// day, one field per service. Invalidating a day drops the whole hash, which
// is what booking mutations need anyway.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func dayKey(day time.Time) string {
	return "availability:" + day.Format("2006-01-02")
}

func (c *AvailabilityCache) Get(ctx context.Context, day time.Time, serviceID int64) ([]domain.Slot, bool) {
	raw, err := c.rdb.HGet(ctx, dayKey(day), strconv.FormatInt(serviceID, 10)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.WarnContext(ctx, "availability cache read failed", "error", err)
		return nil, false
	}

	var slots []domain.Slot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *AvailabilityCache) Set(ctx context.Context, day time.Time, serviceID int64, slots []domain.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	key := dayKey(day)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(serviceID, 10), raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.WarnContext(ctx, "availability cache write failed", "error", err)
	}
}

func (c *AvailabilityCache) InvalidateDay(ctx context.Context, day time.Time) {
	if err := c.rdb.Del(ctx, dayKey(day)).Err(); err != nil {
		logger.WarnContext(ctx, "availability cache invalidation failed", "error", err)
	}
}
