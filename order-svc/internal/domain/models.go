package domain

import "time"

type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price int    `json:"price"`
}

type Option struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Required  bool     `json:"required"`
	MaxSelect int      `json:"maxSelect"`
	Choices   []Choice `json:"choices"`
}

type MenuItem struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	IsSoldOut   bool     `json:"is_sold_out"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Tag         string   `json:"tag,omitempty"`
	Options     []Option `json:"options"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type Store struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Logo        string   `json:"logo"`
	HeroImage   string   `json:"heroImage"`
	Categories  []string `json:"categories"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	MinOrder    int      `json:"minOrder"`
	DeliveryFee int      `json:"deliveryFee"`
	EtaMin      int      `json:"etaMin"`
	EtaMax      int      `json:"etaMax"`
	IsOpen      bool     `json:"isOpen"`
	Tags        []string `json:"tags,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Notice      string   `json:"notice,omitempty"`
}

type MenuSection struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Items       []MenuItem `json:"items"`
}

type OptionSelection struct {
	OptionID  string   `json:"option_id"`
	ChoiceIDs []string `json:"choice_ids"`
}

// OrderItem is a priced line item. Prices are fixed at creation time.
type OrderItem struct {
	MenuID       int               `json:"menu_id"`
	Quantity     int               `json:"quantity"`
	Options      []OptionSelection `json:"options"`
	UnitPrice    int               `json:"unit_price"`
	OptionsPrice int               `json:"options_price"`
	LinePrice    int               `json:"line_price"`
	MenuName     string            `json:"menu_name,omitempty"`
}

type Order struct {
	ID              int         `json:"id"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	StoreID         int         `json:"store_id,omitempty"`
	MenuID          int         `json:"menu_id"`
	Items           []OrderItem `json:"items"`
	TotalPrice      int         `json:"total_price"`
	Status          Status      `json:"status"`
	OrderTime       time.Time   `json:"order_time"`
	DeliveryETA     *time.Time  `json:"delivery_eta"`
	TrackingID      string      `json:"tracking_uuid"`
	IdempotencyKey  *string     `json:"idempotency_key"`
	PaymentMethod   string      `json:"payment_method"`
}

// HasIdempotencyKey reports whether the order was stored under key.
func (o *Order) HasIdempotencyKey(key string) bool {
	return key != "" && o.IdempotencyKey != nil && *o.IdempotencyKey == key
}

func (o *Order) MenuIDs() []int {
	ids := make([]int, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.MenuID)
	}
	return ids
}

type DailyStats struct {
	Date     string         `json:"date"`
	Orders   int64          `json:"orders"`
	Revenue  int64          `json:"revenue"`
	ByStatus map[string]int `json:"by_status"`
	TopMenus []MenuCount    `json:"top_menus"`
}

type MenuCount struct {
	MenuID int     `json:"menu_id"`
	Count  float64 `json:"count"`
}
