package service

import (
	"context"

	"flash-delivery/events"
	"flash-delivery/order-svc/internal/domain"
	"flash-delivery/order-svc/internal/metrics"
	"flash-delivery/order-svc/internal/storage"
)

type OrderServiceInterface interface {
	Create(ctx context.Context, payload OrderPayload, idempotencyKey string) (IntakeResult, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int, status domain.Status, etaMinutes *int) error
	TrackingQRCode(ctx context.Context, trackingID string) ([]byte, error)
}

type CatalogServiceInterface interface {
	Menus() []domain.MenuItem
	Categories() []domain.Category
	Stores(category string) []domain.Store
	SearchStores(q string) []domain.Store
	Store(id int) (domain.Store, bool)
	StoreMenu(storeID int) ([]domain.MenuSection, bool)
}

// OrderRepository persists the order collection. Implementations must make
// Insert atomic with respect to the idempotency key and id assignment.
type OrderRepository interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// Insert assigns the next id and stores order. When another order already
	// holds the same idempotency key it is returned with created=false.
	Insert(ctx context.Context, order *domain.Order) (stored *domain.Order, created bool, err error)
	// Update applies mutate to the order with the given id and persists it.
	Update(ctx context.Context, orderID int, mutate func(*domain.Order)) (*domain.Order, error)
}

type IdempotencyCache interface {
	Lookup(ctx context.Context, key string) (trackingID string, found bool, err error)
	Remember(ctx context.Context, key, trackingID string) error
}

type OrderPublisher interface {
	PublishOrderEvent(ctx context.Context, event events.OrderEvent) error
}

type OrderMetrics interface {
	OrderCreated(totalPrice int)
	OrderReplayed()
	OrderRejected(reason string)
	StatusUpdated(status domain.Status)
}

type StatsReader interface {
	DailyStats(ctx context.Context, day string) (*domain.DailyStats, error)
}

type Authenticator interface {
	Login(password string) (string, error)
	Authorize(token string) bool
}

var (
	_ OrderServiceInterface   = (*OrderService)(nil)
	_ CatalogServiceInterface = (*Catalog)(nil)
	_ Authenticator           = (*StaticTokenAuth)(nil)

	_ OrderRepository  = (*storage.FileRepository)(nil)
	_ OrderRepository  = (*storage.PebbleRepository)(nil)
	_ OrderRepository  = (*storage.PostgresRepository)(nil)
	_ IdempotencyCache = (*storage.RedisIdempotencyCache)(nil)
	_ OrderPublisher   = (*storage.KafkaPublisher)(nil)
	_ StatsReader      = (*storage.RedisStats)(nil)
	_ OrderMetrics     = (*metrics.Registry)(nil)
)
