package storage

import (
	"context"
	"testing"
	"time"

	"flash-delivery/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisIdempotencyCache(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisIdempotencyCache(client, time.Hour)
	ctx := context.Background()

	_, found, err := cache.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Remember(ctx, "abc", "track-1"))
	assert.Equal(t, time.Hour, mr.TTL(cache.Key("abc")))

	trackingID, found, err := cache.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "track-1", trackingID)

	mr.FastForward(2 * time.Hour)
	_, found, err = cache.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisIdempotencyCache_ServerDown(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisIdempotencyCache(client, time.Hour)
	mr.Close()

	_, _, err := cache.Lookup(context.Background(), "abc")
	assert.Error(t, err)
}

func TestRedisStats_DailyStats(t *testing.T) {
	mr, client := setupRedis(t)
	day := "2024-05-01"

	mr.HSet(events.DailyTotalsKey(day), events.FieldOrders, "3", events.FieldRevenue, "51600")
	mr.HSet(events.DailyStatusKey(day), "pending", "3", "arrived", "1")
	mr.ZAdd(events.DailyMenusKey(day), 4, "1")
	mr.ZAdd(events.DailyMenusKey(day), 2, "4101")
	mr.ZAdd(events.DailyMenusKey(day), 1, "not-a-menu")

	stats, err := NewRedisStats(client).DailyStats(context.Background(), day)

	require.NoError(t, err)
	assert.Equal(t, day, stats.Date)
	assert.EqualValues(t, 3, stats.Orders)
	assert.EqualValues(t, 51600, stats.Revenue)
	assert.Equal(t, map[string]int{"pending": 3, "arrived": 1}, stats.ByStatus)
	require.Len(t, stats.TopMenus, 2)
	assert.Equal(t, 1, stats.TopMenus[0].MenuID)
	assert.Equal(t, float64(4), stats.TopMenus[0].Count)
}

func TestRedisStats_EmptyDay(t *testing.T) {
	_, client := setupRedis(t)

	stats, err := NewRedisStats(client).DailyStats(context.Background(), "2024-01-01")

	require.NoError(t, err)
	assert.Zero(t, stats.Orders)
	assert.Empty(t, stats.ByStatus)
	assert.Empty(t, stats.TopMenus)
}
