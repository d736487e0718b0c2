package events

import (
	"fmt"
	"time"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
)

// OrderEvent is the message written to the orders topic, keyed by order id.
type OrderEvent struct {
	Type        string     `json:"type"`
	OrderID     int        `json:"order_id"`
	TrackingID  string     `json:"tracking_uuid"`
	StoreID     int        `json:"store_id,omitempty"`
	Status      string     `json:"status"`
	TotalPrice  int        `json:"total_price"`
	MenuIDs     []int      `json:"menu_ids,omitempty"`
	DeliveryETA *time.Time `json:"delivery_eta,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

const DayLayout = "2006-01-02"

// Redis keys shared by the aggregator (writer) and the admin stats reader.

func DailyTotalsKey(day string) string {
	return fmt.Sprintf("stats:daily:%s", day)
}

func DailyStatusKey(day string) string {
	return fmt.Sprintf("stats:status:%s", day)
}

func DailyMenusKey(day string) string {
	return fmt.Sprintf("stats:menus:%s", day)
}

const (
	FieldOrders  = "orders"
	FieldRevenue = "revenue"
)
