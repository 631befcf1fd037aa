package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
)

func newTestCache(t *testing.T) (*AvailabilityCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewAvailabilityCache(rdb, time.Minute), mr
}

func TestAvailabilityCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	_, ok := c.Get(ctx, day, 1)
	assert.False(t, ok)

	slots := []domain.Slot{
		{StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(11 * time.Hour)},
		{StartsAt: day.Add(11 * time.Hour), EndsAt: day.Add(12 * time.Hour)},
	}
	c.Set(ctx, day, 1, slots)

	got, ok := c.Get(ctx, day, 1)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.True(t, got[0].StartsAt.Equal(slots[0].StartsAt))

	// An empty list is a valid cached value, distinct from a miss.
	c.Set(ctx, day, 2, []domain.Slot{})
	got, ok = c.Get(ctx, day, 2)
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestAvailabilityCacheInvalidateDayDropsAllServices(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	otherDay := day.AddDate(0, 0, 1)

	slots := []domain.Slot{{StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(11 * time.Hour)}}
	c.Set(ctx, day, 1, slots)
	c.Set(ctx, day, 2, slots)
	c.Set(ctx, otherDay, 1, slots)

	c.InvalidateDay(ctx, day)

	_, ok := c.Get(ctx, day, 1)
	assert.False(t, ok)
	_, ok = c.Get(ctx, day, 2)
	assert.False(t, ok)

	_, ok = c.Get(ctx, otherDay, 1)
	assert.True(t, ok, "other days stay cached")
}

func TestAvailabilityCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	c.Set(ctx, day, 1, []domain.Slot{{StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(11 * time.Hour)}})

	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, day, 1)
	assert.False(t, ok)
}
