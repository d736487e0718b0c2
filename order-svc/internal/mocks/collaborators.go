package mocks

import (
	"context"

	"flash-delivery/events"
	"flash-delivery/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type IdempotencyCache struct {
	mock.Mock
}

func (m *IdempotencyCache) Lookup(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *IdempotencyCache) Remember(ctx context.Context, key, trackingID string) error {
	args := m.Called(ctx, key, trackingID)
	return args.Error(0)
}

type OrderPublisher struct {
	mock.Mock
}

func (m *OrderPublisher) PublishOrderEvent(ctx context.Context, event events.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type StatsReader struct {
	mock.Mock
}

func (m *StatsReader) DailyStats(ctx context.Context, day string) (*domain.DailyStats, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyStats), args.Error(1)
}
