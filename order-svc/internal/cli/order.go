package cli

import (
	"fmt"
	"strconv"
	"strings"

	"flash-delivery/order-svc/internal/client"
	"flash-delivery/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	Address        string
	Phone          string
	PaymentMethod  string
	StoreID        int
	Items          []string
	Options        []string
	IdempotencyKey string
}

func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place an order",
		Long: `Place an order. Each --item is MENU_ID or MENU_IDxQTY, and each --option
is MENU_ID:OPTION_ID=CHOICE_ID[,CHOICE_ID] applied to the line for that menu.

A random idempotency key is generated unless --key is given, so retrying
with the same --key never creates a second order.

Examples:
  flashctl order --address "12 Teheran-ro" --phone 010-1234-5678 --item 1x2 --option 1:patty=patty_double
  flashctl order --address "12 Teheran-ro" --phone 01012345678 --item 2 --item 3 --key retry-42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "address", "", "delivery address (required)")
	_ = cmd.MarkFlagRequired("address")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "customer phone (required)")
	_ = cmd.MarkFlagRequired("phone")
	cmd.Flags().StringVar(&opts.PaymentMethod, "payment", "", "payment method (default card)")
	cmd.Flags().IntVar(&opts.StoreID, "store", 0, "store id")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "line item MENU_ID[xQTY] (repeatable)")
	_ = cmd.MarkFlagRequired("item")
	cmd.Flags().StringArrayVar(&opts.Options, "option", nil, "option MENU_ID:OPTION_ID=CHOICE_ID[,CHOICE_ID] (repeatable)")
	cmd.Flags().StringVar(&opts.IdempotencyKey, "key", "", "idempotency key (default random UUID)")

	return cmd
}

func runOrder(opts *OrderOptions, cmd *cobra.Command) error {
	items, err := parseItems(opts.Items, opts.Options)
	if err != nil {
		return err
	}

	key := opts.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	result, err := opts.client().CreateOrder(cmd.Context(), client.OrderRequest{
		Address:       opts.Address,
		Phone:         opts.Phone,
		PaymentMethod: opts.PaymentMethod,
		StoreID:       opts.StoreID,
		Items:         items,
	}, key)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}

	if opts.JSON {
		return opts.printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"created":         result.Created,
			"tracking_uuid":   result.TrackingID,
			"idempotency_key": key,
		})
	}
	out := cmd.OutOrStdout()
	if result.Created {
		fmt.Fprintf(out, "order placed: %s\n", result.TrackingID)
	} else {
		fmt.Fprintf(out, "order already placed for key %s: %s\n", key, result.TrackingID)
	}
	fmt.Fprintf(out, "idempotency key: %s\n", key)
	return nil
}

func parseItems(rawItems, rawOptions []string) ([]client.LineItem, error) {
	items := make([]client.LineItem, 0, len(rawItems))
	byMenu := map[int]int{}
	for _, raw := range rawItems {
		menuPart, qtyPart, hasQty := strings.Cut(strings.ToLower(strings.TrimSpace(raw)), "x")
		menuID, err := strconv.Atoi(menuPart)
		if err != nil {
			return nil, fmt.Errorf("invalid --item %q: menu id must be a number", raw)
		}
		qty := 1
		if hasQty {
			if qty, err = strconv.Atoi(qtyPart); err != nil || qty < 1 {
				return nil, fmt.Errorf("invalid --item %q: quantity must be a positive number", raw)
			}
		}
		byMenu[menuID] = len(items)
		items = append(items, client.LineItem{MenuID: menuID, Quantity: qty, Options: []domain.OptionSelection{}})
	}

	for _, raw := range rawOptions {
		menuPart, rest, ok := strings.Cut(raw, ":")
		optionID, choices, ok2 := strings.Cut(rest, "=")
		menuID, err := strconv.Atoi(menuPart)
		if !ok || !ok2 || err != nil || optionID == "" || choices == "" {
			return nil, fmt.Errorf("invalid --option %q: want MENU_ID:OPTION_ID=CHOICE_ID[,CHOICE_ID]", raw)
		}
		idx, found := byMenu[menuID]
		if !found {
			return nil, fmt.Errorf("invalid --option %q: no --item for menu %d", raw, menuID)
		}
		items[idx].Options = append(items[idx].Options, domain.OptionSelection{
			OptionID:  optionID,
			ChoiceIDs: strings.Split(choices, ","),
		})
	}
	return items, nil
}
