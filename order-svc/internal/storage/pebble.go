package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"flash-delivery/order-svc/internal/domain"

	"github.com/cockroachdb/pebble"
)

const (
	orderKeyPrefix    = "order/"
	trackingKeyPrefix = "tracking/"
	idemKeyPrefix     = "idem/"
)

// PebbleRepository stores orders in an embedded Pebble database. Orders are
// JSON values under order/<id>; tracking/<uuid> and idem/<key> index them.
type PebbleRepository struct {
	db *pebble.DB
	mu sync.Mutex
}

func NewPebbleRepository(dir string) (*PebbleRepository, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleRepository{db: db}, nil
}

func (r *PebbleRepository) Close() error {
	return r.db.Close()
}

func orderKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", orderKeyPrefix, id))
}

func (r *PebbleRepository) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	return r.getByIndex(idemKeyPrefix + key)
}

func (r *PebbleRepository) GetByTrackingID(_ context.Context, trackingID string) (*domain.Order, error) {
	return r.getByIndex(trackingKeyPrefix + trackingID)
}

func (r *PebbleRepository) List(_ context.Context) ([]domain.Order, error) {
	it, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(orderKeyPrefix),
		UpperBound: prefixUpperBound(orderKeyPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	orders := []domain.Order{}
	for it.First(); it.Valid(); it.Next() {
		var order domain.Order
		if err := json.Unmarshal(it.Value(), &order); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Key(), err)
		}
		orders = append(orders, order)
	}
	return orders, it.Error()
}

func (r *PebbleRepository) Insert(_ context.Context, order *domain.Order) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.IdempotencyKey != nil && *order.IdempotencyKey != "" {
		existing, err := r.getByIndex(idemKeyPrefix + *order.IdempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
	}

	lastID, err := r.lastOrderID()
	if err != nil {
		return nil, false, err
	}
	stored := *order
	stored.ID = lastID + 1

	value, err := json.Marshal(stored)
	if err != nil {
		return nil, false, fmt.Errorf("encode order: %w", err)
	}
	ref := []byte(strconv.Itoa(stored.ID))

	batch := r.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(orderKey(stored.ID), value, nil); err != nil {
		return nil, false, err
	}
	if err := batch.Set([]byte(trackingKeyPrefix+stored.TrackingID), ref, nil); err != nil {
		return nil, false, err
	}
	if stored.IdempotencyKey != nil && *stored.IdempotencyKey != "" {
		if err := batch.Set([]byte(idemKeyPrefix+*stored.IdempotencyKey), ref, nil); err != nil {
			return nil, false, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, false, fmt.Errorf("commit order %d: %w", stored.ID, err)
	}
	return &stored, true, nil
}

func (r *PebbleRepository) Update(_ context.Context, orderID int, mutate func(*domain.Order)) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	mutate(order)

	value, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	if err := r.db.Set(orderKey(orderID), value, pebble.Sync); err != nil {
		return nil, fmt.Errorf("update order %d: %w", orderID, err)
	}
	return order, nil
}

func (r *PebbleRepository) getByIndex(indexKey string) (*domain.Order, error) {
	v, closer, err := r.db.Get([]byte(indexKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id, convErr := strconv.Atoi(string(v))
	_ = closer.Close()
	if convErr != nil {
		return nil, fmt.Errorf("corrupt index %s: %w", indexKey, convErr)
	}
	return r.getOrder(id)
}

func (r *PebbleRepository) getOrder(id int) (*domain.Order, error) {
	v, closer, err := r.db.Get(orderKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var order domain.Order
	if err := json.Unmarshal(v, &order); err != nil {
		return nil, fmt.Errorf("decode order %d: %w", id, err)
	}
	return &order, nil
}

func (r *PebbleRepository) lastOrderID() (int, error) {
	it, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(orderKeyPrefix),
		UpperBound: prefixUpperBound(orderKeyPrefix),
	})
	if err != nil {
		return 0, err
	}
	defer it.Close()

	if !it.Last() {
		return 0, it.Error()
	}
	id, err := strconv.Atoi(string(it.Key()[len(orderKeyPrefix):]))
	if err != nil {
		return 0, fmt.Errorf("corrupt order key %q: %w", it.Key(), err)
	}
	return id, nil
}

func prefixUpperBound(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}
