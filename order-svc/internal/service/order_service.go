package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"flash-delivery/events"
	"flash-delivery/order-svc/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultPaymentMethod = "card"
	publishTimeout       = 2 * time.Second

	// MaxEtaMinutes bounds eta_minutes in either direction so the offset
	// always fits a time.Duration. It is roughly 100 years.
	MaxEtaMinutes = 100 * 366 * 24 * 60
)

var (
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrInvalidItems       = errors.New("invalid_items")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidEta         = errors.New("invalid_eta")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

var nonDigits = regexp.MustCompile(`\D+`)

// OrderPayload is the body of POST /orders. Either Items or the legacy
// single MenuID form is used.
type OrderPayload struct {
	Address       domain.FlexString `json:"address"`
	Phone         domain.FlexString `json:"phone"`
	PaymentMethod domain.FlexString `json:"payment_method"`
	StoreID       domain.FlexInt    `json:"store_id"`
	MenuID        *domain.FlexInt   `json:"menu_id"`
	Items         []RawLineItem     `json:"items"`
}

type IntakeResult struct {
	Created    bool
	OrderID    int
	TrackingID string
}

type OrderService struct {
	repo      OrderRepository
	menus     MenuLookup
	cache     IdempotencyCache
	publisher OrderPublisher
	metrics   OrderMetrics
	qrEncoder QRGenerator

	// Now is the clock used for order times and ETAs.
	Now func() time.Time
}

// NewOrderService wires the order workflow. cache, publisher, metrics and qr
// may be nil.
func NewOrderService(repo OrderRepository, menus MenuLookup, cache IdempotencyCache, publisher OrderPublisher, metrics OrderMetrics, qr QRGenerator) *OrderService {
	return &OrderService{
		repo:      repo,
		menus:     menus,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		qrEncoder: qr,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderService) Create(ctx context.Context, payload OrderPayload, idempotencyKey string) (IntakeResult, error) {
	if idempotencyKey != "" {
		replay, ok, err := s.findReplay(ctx, idempotencyKey)
		if err != nil {
			return IntakeResult{}, err
		}
		if ok {
			s.recordReplay()
			return replay, nil
		}
	}

	order, err := s.buildOrder(payload, idempotencyKey)
	if err != nil {
		s.recordRejected(err)
		return IntakeResult{}, err
	}

	stored, created, err := s.repo.Insert(ctx, order)
	if err != nil {
		return IntakeResult{}, fmt.Errorf("failed to store order: %w", err)
	}
	result := IntakeResult{Created: created, OrderID: stored.ID, TrackingID: stored.TrackingID}
	if !created {
		s.recordReplay()
		return result, nil
	}

	if s.cache != nil && idempotencyKey != "" {
		if err := s.cache.Remember(ctx, idempotencyKey, stored.TrackingID); err != nil {
			log.Printf("[order-svc] idempotency cache write failed: %v", err)
		}
	}
	if s.metrics != nil {
		s.metrics.OrderCreated(stored.TotalPrice)
	}
	s.publish(ctx, events.TypeOrderCreated, stored)

	return result, nil
}

func (s *OrderService) findReplay(ctx context.Context, key string) (IntakeResult, bool, error) {
	if s.cache != nil {
		trackingID, found, err := s.cache.Lookup(ctx, key)
		if err != nil {
			log.Printf("[order-svc] idempotency cache read failed: %v", err)
		} else if found {
			return IntakeResult{TrackingID: trackingID}, true, nil
		}
	}

	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return IntakeResult{}, false, nil
	}
	if err != nil {
		return IntakeResult{}, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return IntakeResult{OrderID: existing.ID, TrackingID: existing.TrackingID}, true, nil
}

func (s *OrderService) buildOrder(payload OrderPayload, idempotencyKey string) (*domain.Order, error) {
	address := strings.TrimSpace(payload.Address.String())
	phone := nonDigits.ReplaceAllString(payload.Phone.String(), "")
	paymentMethod := strings.TrimSpace(payload.PaymentMethod.String())
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	rawItems := payload.Items
	if len(rawItems) == 0 && payload.MenuID != nil {
		rawItems = []RawLineItem{{MenuID: *payload.MenuID, Quantity: 1}}
	}
	if len(rawItems) == 0 || address == "" || phone == "" {
		return nil, ErrInvalidPayload
	}

	items, total := ComputeOrder(rawItems, s.menus)
	if len(items) == 0 {
		return nil, ErrInvalidItems
	}

	order := &domain.Order{
		CustomerPhone:   phone,
		CustomerAddress: address,
		StoreID:         payload.StoreID.Int(),
		MenuID:          items[0].MenuID,
		Items:           items,
		TotalPrice:      total,
		Status:          domain.StatusPending,
		OrderTime:       s.Now().Truncate(time.Second),
		TrackingID:      NewTrackingID(),
		PaymentMethod:   paymentMethod,
	}
	if idempotencyKey != "" {
		key := idempotencyKey
		order.IdempotencyKey = &key
	}
	return order, nil
}

func (s *OrderService) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Order, error) {
	order, err := s.repo.GetByTrackingID(ctx, trackingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// List returns every order, newest first. Orders placed in the same second
// are ordered by descending id.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OrderTime.Equal(orders[j].OrderTime) {
			return orders[i].OrderTime.After(orders[j].OrderTime)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

// UpdateStatus overwrites the status unconditionally. The ETA is replaced
// only when etaMinutes is given, and must lie within MaxEtaMinutes of now.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int, status domain.Status, etaMinutes *int) error {
	if strings.TrimSpace(string(status)) == "" {
		return ErrInvalidStatus
	}
	if etaMinutes != nil && (*etaMinutes > MaxEtaMinutes || *etaMinutes < -MaxEtaMinutes) {
		return ErrInvalidEta
	}

	now := s.Now()
	updated, err := s.repo.Update(ctx, orderID, func(o *domain.Order) {
		o.Status = status
		if etaMinutes != nil {
			eta := now.Add(time.Duration(*etaMinutes) * time.Minute).Truncate(time.Second)
			o.DeliveryETA = &eta
		}
	})
	if errors.Is(err, domain.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", orderID, err)
	}

	if s.metrics != nil {
		s.metrics.StatusUpdated(status)
	}
	s.publish(ctx, events.TypeOrderStatusChanged, updated)
	return nil
}

func (s *OrderService) TrackingQRCode(ctx context.Context, trackingID string) ([]byte, error) {
	if s.qrEncoder == nil {
		return nil, errors.New("qr code generation is disabled")
	}
	if _, err := s.GetByTrackingID(ctx, trackingID); err != nil {
		return nil, err
	}
	return s.qrEncoder.Generate(trackingID)
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.publisher == nil || order == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := events.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		TrackingID:  order.TrackingID,
		StoreID:     order.StoreID,
		Status:      string(order.Status),
		TotalPrice:  order.TotalPrice,
		MenuIDs:     order.MenuIDs(),
		DeliveryETA: order.DeliveryETA,
		Timestamp:   s.Now(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("[order-svc] publish %s for order %d failed: %v", eventType, order.ID, err)
	}
}

func (s *OrderService) recordReplay() {
	if s.metrics != nil {
		s.metrics.OrderReplayed()
	}
}

func (s *OrderService) recordRejected(err error) {
	if s.metrics != nil {
		s.metrics.OrderRejected(err.Error())
	}
}

// NewTrackingID returns a 32 character random hex token.
func NewTrackingID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
