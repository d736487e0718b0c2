package service

import "flash-delivery/order-svc/internal/domain"

// RawLineItem is a line item as submitted by clients, before pricing.
type RawLineItem struct {
	MenuID   domain.FlexInt           `json:"menu_id"`
	Quantity domain.FlexInt           `json:"quantity"`
	Options  []domain.OptionSelection `json:"options"`
}

// MenuLookup resolves menu ids for pricing.
type MenuLookup interface {
	Menu(id int) (domain.MenuItem, bool)
}

// ComputeOrder resolves raw line items against the catalog and returns the
// priced items with their total. Lines with unknown menu ids are dropped.
// Unknown option or choice ids add nothing.
func ComputeOrder(raw []RawLineItem, menus MenuLookup) ([]domain.OrderItem, int) {
	items := make([]domain.OrderItem, 0, len(raw))
	total := 0

	for _, line := range raw {
		menu, ok := menus.Menu(line.MenuID.Int())
		if !ok {
			continue
		}

		qty := line.Quantity.Int()
		if qty < 1 {
			qty = 1
		}

		optionsPrice := optionsUnitPrice(menu, line.Options)
		linePrice := (menu.Price + optionsPrice) * qty
		total += linePrice

		selections := line.Options
		if selections == nil {
			selections = []domain.OptionSelection{}
		}
		items = append(items, domain.OrderItem{
			MenuID:       menu.ID,
			Quantity:     qty,
			Options:      selections,
			UnitPrice:    menu.Price,
			OptionsPrice: optionsPrice,
			LinePrice:    linePrice,
			MenuName:     menu.Name,
		})
	}

	return items, total
}

func optionsUnitPrice(menu domain.MenuItem, selections []domain.OptionSelection) int {
	sum := 0
	for _, sel := range selections {
		opt, ok := findOption(menu.Options, sel.OptionID)
		if !ok {
			continue
		}
		for _, choiceID := range sel.ChoiceIDs {
			if choice, ok := findChoice(opt.Choices, choiceID); ok {
				sum += choice.Price
			}
		}
	}
	return sum
}

func findOption(options []domain.Option, id string) (domain.Option, bool) {
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return domain.Option{}, false
}

func findChoice(choices []domain.Choice, id string) (domain.Choice, bool) {
	for _, c := range choices {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Choice{}, false
}
