package service

import (
	"encoding/json"
	"testing"

	"flash-delivery/order-svc/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadCatalog("")
	require.NoError(t, err)
	return c
}

func decodeLines(t *testing.T, raw string) []RawLineItem {
	t.Helper()
	var lines []RawLineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &lines))
	return lines
}

func TestComputeOrder(t *testing.T) {
	catalog := seedCatalog(t)

	tests := []struct {
		name      string
		lines     string
		wantTotal int
		wantLines int
	}{
		{
			name:      "base price times quantity",
			lines:     `[{"menu_id":1,"quantity":2}]`,
			wantTotal: 25800,
			wantLines: 1,
		},
		{
			name:      "options add per unit",
			lines:     `[{"menu_id":1,"quantity":2,"options":[{"option_id":"patty","choice_ids":["patty_double"]},{"option_id":"cheese","choice_ids":["cheddar","gouda"]}]}]`,
			wantTotal: (12900 + 3900 + 800 + 900) * 2,
			wantLines: 1,
		},
		{
			name:      "duplicate choices counted per occurrence",
			lines:     `[{"menu_id":1,"quantity":1,"options":[{"option_id":"cheese","choice_ids":["cheddar","cheddar"]}]}]`,
			wantTotal: 12900 + 1600,
			wantLines: 1,
		},
		{
			name:      "choice from another option adds nothing",
			lines:     `[{"menu_id":1,"quantity":1,"options":[{"option_id":"patty","choice_ids":["cheddar"]}]}]`,
			wantTotal: 12900,
			wantLines: 1,
		},
		{
			name:      "unknown option ignored",
			lines:     `[{"menu_id":2,"quantity":1,"options":[{"option_id":"sauce","choice_ids":["large"]},{"option_id":"size","choice_ids":["large"]}]}]`,
			wantTotal: 7500 + 1500,
			wantLines: 1,
		},
		{
			name:      "zero and negative quantities clamp to one",
			lines:     `[{"menu_id":2,"quantity":0},{"menu_id":2,"quantity":-3}]`,
			wantTotal: 7500 * 2,
			wantLines: 2,
		},
		{
			name:      "non numeric quantity clamps to one",
			lines:     `[{"menu_id":2,"quantity":"lots"},{"menu_id":2}]`,
			wantTotal: 7500 * 2,
			wantLines: 2,
		},
		{
			name:      "numeric strings are accepted",
			lines:     `[{"menu_id":"2","quantity":"3"}]`,
			wantTotal: 7500 * 3,
			wantLines: 1,
		},
		{
			name:      "unknown menu dropped",
			lines:     `[{"menu_id":999,"quantity":1},{"menu_id":3,"quantity":1}]`,
			wantTotal: 5500,
			wantLines: 1,
		},
		{
			name:      "all unknown yields nothing",
			lines:     `[{"menu_id":999,"quantity":1}]`,
			wantTotal: 0,
			wantLines: 0,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			items, total := ComputeOrder(decodeLines(t, testCase.lines), catalog)

			assert.Equal(t, testCase.wantTotal, total)
			assert.Len(t, items, testCase.wantLines)

			sum := 0
			for _, item := range items {
				assert.GreaterOrEqual(t, item.Quantity, 1)
				assert.Equal(t, (item.UnitPrice+item.OptionsPrice)*item.Quantity, item.LinePrice)
				sum += item.LinePrice
			}
			assert.Equal(t, total, sum)
		})
	}
}

func TestComputeOrder_LineDetails(t *testing.T) {
	catalog := seedCatalog(t)

	items, _ := ComputeOrder(decodeLines(t, `[{"menu_id":1,"quantity":2,"options":[{"option_id":"patty","choice_ids":["patty_double"]}]}]`), catalog)
	require.Len(t, items, 1)

	assert.Equal(t, domain.OrderItem{
		MenuID:       1,
		Quantity:     2,
		Options:      []domain.OptionSelection{{OptionID: "patty", ChoiceIDs: []string{"patty_double"}}},
		UnitPrice:    12900,
		OptionsPrice: 3900,
		LinePrice:    33600,
		MenuName:     "Classic Wagyu Cheeseburger",
	}, items[0])
}
