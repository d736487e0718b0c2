package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"flash-delivery/order-svc/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumnNames = []string{
	"id", "customer_phone", "customer_address", "store_id", "menu_id", "items", "total_price",
	"status", "order_time", "delivery_eta", "tracking_uuid", "idempotency_key", "payment_method",
}

func setupPostgres(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func orderRow(id int, trackingID string, key interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(orderColumnNames).AddRow(
		id, "01012345678", "12 Teheran-ro", 0, 1,
		[]byte(`[{"menu_id":1,"quantity":2,"options":[],"unit_price":12900,"options_price":0,"line_price":25800}]`),
		25800, "pending", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), nil, trackingID, key, "card",
	)
}

func TestPostgresRepository_EnsureSchema(t *testing.T) {
	repo, mock := setupPostgres(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS orders_order_time_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByTrackingID(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		dbErr   error
		wantErr error
	}{
		{name: "found", rows: orderRow(3, "abc", "key-1")},
		{name: "not found", dbErr: sql.ErrNoRows, wantErr: domain.ErrNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := setupPostgres(t)
			query := mock.ExpectQuery("SELECT .+ FROM orders WHERE tracking_uuid = \\$1").WithArgs("abc")
			if testCase.dbErr != nil {
				query.WillReturnError(testCase.dbErr)
			} else {
				query.WillReturnRows(testCase.rows)
			}

			order, err := repo.GetByTrackingID(context.Background(), "abc")

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 3, order.ID)
				assert.Equal(t, domain.StatusPending, order.Status)
				require.Len(t, order.Items, 1)
				assert.Equal(t, 25800, order.Items[0].LinePrice)
				require.NotNil(t, order.IdempotencyKey)
				assert.Equal(t, "key-1", *order.IdempotencyKey)
				assert.Nil(t, order.DeliveryETA)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_Insert(t *testing.T) {
	t.Run("new order gets next id", func(t *testing.T) {
		repo, mock := setupPostgres(t)
		mock.ExpectBegin()
		mock.ExpectExec("LOCK TABLE orders IN EXCLUSIVE MODE").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT .+ FROM orders WHERE idempotency_key = \\$1").WithArgs("abc").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) + 1 FROM orders")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectExec("INSERT INTO orders").
			WithArgs(5, "01012345678", "12 Teheran-ro", 0, 1, sqlmock.AnyArg(), 25800, "pending",
				sqlmock.AnyArg(), sqlmock.AnyArg(), "t1", sqlmock.AnyArg(), "card").
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectCommit()

		stored, created, err := repo.Insert(context.Background(), sampleOrder("t1", strPtr("abc")))

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 5, stored.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing key is returned", func(t *testing.T) {
		repo, mock := setupPostgres(t)
		mock.ExpectBegin()
		mock.ExpectExec("LOCK TABLE orders").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT .+ FROM orders WHERE idempotency_key = \\$1").WithArgs("abc").
			WillReturnRows(orderRow(2, "old-track", "abc"))
		mock.ExpectCommit()

		stored, created, err := repo.Insert(context.Background(), sampleOrder("t1", strPtr("abc")))

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "old-track", stored.TrackingID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		repo, mock := setupPostgres(t)
		mock.ExpectBegin()
		mock.ExpectExec("LOCK TABLE orders").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COALESCE").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec("INSERT INTO orders").WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, _, err := repo.Insert(context.Background(), sampleOrder("t1", nil))

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_Update(t *testing.T) {
	t.Run("updates status", func(t *testing.T) {
		repo, mock := setupPostgres(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .+ FROM orders WHERE id = \\$1 FOR UPDATE").WithArgs(3).
			WillReturnRows(orderRow(3, "abc", nil))
		mock.ExpectExec("UPDATE orders SET status = \\$1, delivery_eta = \\$2 WHERE id = \\$3").
			WithArgs("cooking", sqlmock.AnyArg(), 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		order, err := repo.Update(context.Background(), 3, func(o *domain.Order) { o.Status = domain.StatusCooking })

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCooking, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown order", func(t *testing.T) {
		repo, mock := setupPostgres(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .+ FROM orders WHERE id = \\$1 FOR UPDATE").WithArgs(9).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 9, func(o *domain.Order) {})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := setupPostgres(t)
	rows := orderRow(2, "b", nil)
	rows.AddRow(1, "010", "addr", 201, 4101, []byte(`[]`), 15800, "arrived",
		time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 9, 30, 0, 0, time.UTC), "a", nil, "cash")
	mock.ExpectQuery("SELECT .+ FROM orders ORDER BY order_time DESC").WillReturnRows(rows)

	orders, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 2, orders[0].ID)
	assert.Equal(t, 201, orders[1].StoreID)
	require.NotNil(t, orders[1].DeliveryETA)
	assert.NoError(t, mock.ExpectationsWereMet())
}
