package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"flash-delivery/events"

	"github.com/segmentio/kafka-go"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMalformedEvent   = errors.New("malformed order event")
)

const readRetryDelay = time.Second

type Consumer struct {
	Reader MessageReader
	Store  StoreInterface

	// RetryDelay is the pause between failed fetches or store writes.
	RetryDelay time.Duration
}

func NewConsumer(reader MessageReader, store StoreInterface) *Consumer {
	return &Consumer{
		Reader:     reader,
		Store:      store,
		RetryDelay: readRetryDelay,
	}
}

// Start reads the orders topic until ctx is canceled. A message is committed
// only once the store has taken it, or once it is known to be unusable.
func (c *Consumer) Start(ctx context.Context) {
	log.Println("[agg-svc] consumer started")
	for {
		message, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("[agg-svc] consumer stopped")
				return
			}
			log.Printf("[agg-svc] fetch message failed: %v", err)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		if !c.apply(ctx, message) {
			log.Println("[agg-svc] consumer stopped")
			return
		}
		if err := c.Reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[agg-svc] commit offset %d failed: %v", message.Offset, err)
		}
	}
}

// apply retries message until the store accepts it. It returns false when
// ctx ends first.
func (c *Consumer) apply(ctx context.Context, message kafka.Message) bool {
	for {
		err := c.HandleMessage(ctx, message)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrMalformedEvent) || errors.Is(err, ErrUnknownEventType) {
			log.Printf("[agg-svc] message at offset %d skipped: %v", message.Offset, err)
			return true
		}
		log.Printf("[agg-svc] message at offset %d failed, retrying: %v", message.Offset, err)
		if !c.wait(ctx) {
			return false
		}
	}
}

func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.RetryDelay):
		return true
	}
}

func (c *Consumer) HandleMessage(ctx context.Context, message kafka.Message) error {
	var event events.OrderEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return c.ProcessEvent(ctx, event)
}

// ProcessEvent applies one order event to the aggregates of the UTC day it
// happened on. Redelivered events are counted once.
func (c *Consumer) ProcessEvent(ctx context.Context, event events.OrderEvent) error {
	day := event.Timestamp.UTC().Format(events.DayLayout)

	var (
		applied bool
		err     error
	)
	switch event.Type {
	case events.TypeOrderCreated:
		applied, err = c.Store.RecordOrderCreated(ctx, day, event)
	case events.TypeOrderStatusChanged:
		applied, err = c.Store.RecordStatusChange(ctx, day, event)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}
	if err != nil {
		return fmt.Errorf("record %s for order %d: %w", event.Type, event.OrderID, err)
	}

	if applied {
		log.Printf("[agg-svc] %s order=%d status=%s day=%s", event.Type, event.OrderID, event.Status, day)
	} else {
		log.Printf("[agg-svc] duplicate %s for order %d ignored", event.Type, event.OrderID)
	}
	return nil
}
