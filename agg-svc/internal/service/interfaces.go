package service

import (
	"context"

	"flash-delivery/agg-svc/internal/storage"
	"flash-delivery/events"

	"github.com/segmentio/kafka-go"
)

// StoreInterface folds order events into the per-day aggregates.
type StoreInterface interface {
	RecordOrderCreated(ctx context.Context, day string, event events.OrderEvent) (bool, error)
	RecordStatusChange(ctx context.Context, day string, event events.OrderEvent) (bool, error)
}

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

var (
	_ StoreInterface = (*storage.Store)(nil)
	_ MessageReader  = (*kafka.Reader)(nil)
)
