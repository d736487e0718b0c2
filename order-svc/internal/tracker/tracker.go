package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flash-delivery/order-svc/internal/client"
	"flash-delivery/order-svc/internal/domain"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxInterval = 40 * time.Second
	DefaultMaxFailures = 5
)

var ErrGaveUp = errors.New("gave up after repeated failures")

type OrderFetcher interface {
	Order(ctx context.Context, trackingID string) (*domain.Order, error)
}

// Tracker polls an order until it reaches a terminal status. Failed polls
// double the delay up to MaxInterval and a success resets it.
type Tracker struct {
	Fetcher     OrderFetcher
	Interval    time.Duration
	MaxInterval time.Duration
	MaxFailures int

	// OnUpdate is called after every successful poll.
	OnUpdate func(order *domain.Order)
	// OnError is called after every failed poll with the delay before the next try.
	OnError func(err error, failures int, next time.Duration)

	Sleep func(ctx context.Context, d time.Duration) error
}

func New(fetcher OrderFetcher) *Tracker {
	return &Tracker{
		Fetcher:     fetcher,
		Interval:    DefaultInterval,
		MaxInterval: DefaultMaxInterval,
		MaxFailures: DefaultMaxFailures,
		Sleep:       sleepContext,
	}
}

// Run returns the last order seen once it is terminal. A missing order
// returns client.ErrNotFound right away.
func (t *Tracker) Run(ctx context.Context, trackingID string) (*domain.Order, error) {
	delay := t.Interval
	failures := 0
	var last *domain.Order

	for {
		order, err := t.Fetcher.Order(ctx, trackingID)
		switch {
		case errors.Is(err, client.ErrNotFound):
			return nil, err
		case err != nil:
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			failures++
			delay = t.backoff(delay)
			if t.OnError != nil {
				t.OnError(err, failures, delay)
			}
			if failures >= t.MaxFailures {
				return last, fmt.Errorf("%w: %v", ErrGaveUp, err)
			}
		default:
			last = order
			failures = 0
			delay = t.Interval
			if t.OnUpdate != nil {
				t.OnUpdate(order)
			}
			if order.Status.IsTerminal() {
				return order, nil
			}
		}

		if err := t.sleep(ctx, delay); err != nil {
			return last, err
		}
	}
}

func (t *Tracker) backoff(delay time.Duration) time.Duration {
	delay *= 2
	if delay > t.MaxInterval {
		return t.MaxInterval
	}
	return delay
}

func (t *Tracker) sleep(ctx context.Context, d time.Duration) error {
	if t.Sleep != nil {
		return t.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
