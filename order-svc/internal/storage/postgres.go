package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flash-delivery/order-svc/internal/domain"
)

const orderColumns = "id, customer_phone, customer_address, store_id, menu_id, items, total_price, " +
	"status, order_time, delivery_eta, tracking_uuid, idempotency_key, payment_method"

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			customer_phone TEXT NOT NULL,
			customer_address TEXT NOT NULL,
			store_id INTEGER NOT NULL DEFAULT 0,
			menu_id INTEGER NOT NULL,
			items JSONB NOT NULL,
			total_price INTEGER NOT NULL,
			status TEXT NOT NULL,
			order_time TIMESTAMPTZ NOT NULL,
			delivery_eta TIMESTAMPTZ,
			tracking_uuid TEXT NOT NULL UNIQUE,
			idempotency_key TEXT UNIQUE,
			payment_method TEXT NOT NULL
		)`,
		"CREATE INDEX IF NOT EXISTS orders_order_time_idx ON orders (order_time DESC)",
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order   domain.Order
		items   []byte
		status  string
		eta     sql.NullTime
		idemKey sql.NullString
	)
	err := row.Scan(&order.ID, &order.CustomerPhone, &order.CustomerAddress, &order.StoreID, &order.MenuID,
		&items, &order.TotalPrice, &status, &order.OrderTime, &eta, &order.TrackingID, &idemKey, &order.PaymentMethod)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %d: %w", order.ID, err)
	}
	order.Status = domain.Status(status)
	if eta.Valid {
		t := eta.Time.UTC()
		order.DeliveryETA = &t
	}
	if idemKey.Valid {
		key := idemKey.String
		order.IdempotencyKey = &key
	}
	order.OrderTime = order.OrderTime.UTC()
	return &order, nil
}

func (r *PostgresRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE idempotency_key = $1", key))
}

func (r *PostgresRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Order, error) {
	return scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE tracking_uuid = $1", trackingID))
}

func (r *PostgresRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY order_time DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// Insert takes an exclusive table lock so the idempotency check and the
// max(id)+1 assignment happen as one step.
func (r *PostgresRepository) Insert(ctx context.Context, order *domain.Order) (*domain.Order, bool, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, false, fmt.Errorf("encode items: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE orders IN EXCLUSIVE MODE"); err != nil {
		return nil, false, err
	}

	if order.IdempotencyKey != nil && *order.IdempotencyKey != "" {
		existing, err := scanOrder(tx.QueryRowContext(ctx,
			"SELECT "+orderColumns+" FROM orders WHERE idempotency_key = $1", *order.IdempotencyKey))
		if err == nil {
			return existing, false, tx.Commit()
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
	}

	stored := *order
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM orders").Scan(&stored.ID); err != nil {
		return nil, false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		stored.ID, stored.CustomerPhone, stored.CustomerAddress, stored.StoreID, stored.MenuID, items,
		stored.TotalPrice, string(stored.Status), stored.OrderTime, nullTime(stored.DeliveryETA),
		stored.TrackingID, nullString(stored.IdempotencyKey), stored.PaymentMethod)
	if err != nil {
		return nil, false, fmt.Errorf("insert order %d: %w", stored.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &stored, true, nil
}

func (r *PostgresRepository) Update(ctx context.Context, orderID int, mutate func(*domain.Order)) (*domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", orderID))
	if err != nil {
		return nil, err
	}
	mutate(order)

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, delivery_eta = $2 WHERE id = $3",
		string(order.Status), nullTime(order.DeliveryETA), orderID); err != nil {
		return nil, fmt.Errorf("update order %d: %w", orderID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
