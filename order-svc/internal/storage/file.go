package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"flash-delivery/order-svc/internal/domain"
)

const ordersFileName = "orders.json"

// FileRepository keeps the whole order collection in one JSON array file.
// Every mutation rewrites the file under a process-wide lock.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	r := &FileRepository{path: filepath.Join(dir, ordersFileName)}
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		if err := r.save([]domain.Order{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *FileRepository) Path() string {
	return r.path
}

func (r *FileRepository) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, err
	}
	return findByIdempotencyKey(orders, key)
}

func (r *FileRepository) GetByTrackingID(_ context.Context, trackingID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].TrackingID == trackingID {
			return &orders[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *FileRepository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *FileRepository) Insert(_ context.Context, order *domain.Order) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, false, err
	}
	if order.IdempotencyKey != nil {
		if existing, err := findByIdempotencyKey(orders, *order.IdempotencyKey); err == nil {
			return existing, false, nil
		}
	}

	stored := *order
	stored.ID = nextOrderID(orders)
	orders = append(orders, stored)
	if err := r.save(orders); err != nil {
		return nil, false, err
	}
	return &stored, true, nil
}

func (r *FileRepository) Update(_ context.Context, orderID int, mutate func(*domain.Order)) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			mutate(&orders[i])
			if err := r.save(orders); err != nil {
				return nil, err
			}
			updated := orders[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *FileRepository) load() ([]domain.Order, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Order{}, nil
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// save writes to a temp file in the same directory and renames it over the
// collection so readers never see a partial write.
func (r *FileRepository) save(orders []domain.Order) error {
	data, err := json.MarshalIndent(orders, "", "    ")
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ordersFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

func findByIdempotencyKey(orders []domain.Order, key string) (*domain.Order, error) {
	for i := range orders {
		if orders[i].HasIdempotencyKey(key) {
			return &orders[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func nextOrderID(orders []domain.Order) int {
	maxID := 0
	for _, o := range orders {
		if o.ID > maxID {
			maxID = o.ID
		}
	}
	return maxID + 1
}
