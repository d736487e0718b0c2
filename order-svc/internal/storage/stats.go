package storage

import (
	"context"
	"strconv"

	"flash-delivery/events"
	"flash-delivery/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const topMenusLimit = 5

// RedisStats reads the daily aggregates maintained by agg-svc.
type RedisStats struct {
	Client *redis.Client
}

func NewRedisStats(client *redis.Client) *RedisStats {
	return &RedisStats{Client: client}
}

func (s *RedisStats) DailyStats(ctx context.Context, day string) (*domain.DailyStats, error) {
	stats := &domain.DailyStats{
		Date:     day,
		ByStatus: map[string]int{},
		TopMenus: []domain.MenuCount{},
	}

	totals, err := s.Client.HGetAll(ctx, events.DailyTotalsKey(day)).Result()
	if err != nil {
		return nil, err
	}
	stats.Orders, _ = strconv.ParseInt(totals[events.FieldOrders], 10, 64)
	stats.Revenue, _ = strconv.ParseInt(totals[events.FieldRevenue], 10, 64)

	statuses, err := s.Client.HGetAll(ctx, events.DailyStatusKey(day)).Result()
	if err != nil {
		return nil, err
	}
	for status, raw := range statuses {
		n, _ := strconv.Atoi(raw)
		stats.ByStatus[status] = n
	}

	top, err := s.Client.ZRevRangeWithScores(ctx, events.DailyMenusKey(day), 0, topMenusLimit-1).Result()
	if err != nil {
		return nil, err
	}
	for _, z := range top {
		member, _ := z.Member.(string)
		menuID, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		stats.TopMenus = append(stats.TopMenus, domain.MenuCount{MenuID: menuID, Count: z.Score})
	}
	return stats, nil
}
