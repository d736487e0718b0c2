package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"flash-delivery/events"
	"flash-delivery/order-svc/internal/domain"

	"github.com/spf13/cobra"
)

const envAdminPassword = "FLASH_ADMIN_PASSWORD"

func NewAdminCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin operations (login, orders, status, stats)",
	}

	cmd.AddCommand(newAdminLoginCommand(rootOpts))
	cmd.AddCommand(newAdminOrdersCommand(rootOpts))
	cmd.AddCommand(newAdminStatusCommand(rootOpts))
	cmd.AddCommand(newAdminStatsCommand(rootOpts))

	return cmd
}

func newAdminLoginCommand(opts *RootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange the admin password for a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("password is required (--password or %s)", envAdminPassword)
			}
			token, err := opts.client().Login(cmd.Context(), password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if opts.JSON {
				return opts.printJSON(cmd.OutOrStdout(), map[string]string{"token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", os.Getenv(envAdminPassword), "admin password")

	return cmd
}

func newAdminOrdersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List all orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := opts.client().AdminOrders(cmd.Context())
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			if opts.JSON {
				return opts.printJSON(cmd.OutOrStdout(), orders)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tTOTAL\tPHONE\tPLACED\tTRACKING\t")
			for _, o := range orders {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
					o.ID, o.Status, formatWon(o.TotalPrice), o.CustomerPhone,
					o.OrderTime.Local().Format("01-02 15:04"), o.TrackingID)
			}
			return tw.Flush()
		},
	}
}

// StatusOptions holds flags for the admin status command.
type StatusOptions struct {
	*RootOptions
	EtaMinutes int
}

func newAdminStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set an order's status and optionally its ETA",
		Long: `Set an order's status. Any status is accepted by the server; flashctl
warns when the change skips or reverses the usual
pending -> accepted -> cooking -> delivering -> arrived flow.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			var eta *int
			if cmd.Flags().Changed("eta") {
				eta = &opts.EtaMinutes
			}
			return runAdminStatus(opts, cmd, orderID, domain.Status(args[1]), eta)
		},
	}

	cmd.Flags().IntVar(&opts.EtaMinutes, "eta", 0, "minutes until delivery")

	return cmd
}

func runAdminStatus(opts *StatusOptions, cmd *cobra.Command, orderID int, next domain.Status, eta *int) error {
	c := opts.client()
	errOut := cmd.ErrOrStderr()

	if !next.IsKnown() {
		fmt.Fprintf(errOut, "warning: %q is not a known status\n", next)
	}
	if orders, err := c.AdminOrders(cmd.Context()); err == nil {
		for _, o := range orders {
			if o.ID == orderID && o.Status != next && !o.Status.CanAdvanceTo(next) {
				fmt.Fprintf(errOut, "warning: order #%d moves from %s to %s out of sequence\n", orderID, o.Status, next)
			}
		}
	}

	if err := c.UpdateStatus(cmd.Context(), orderID, next, eta); err != nil {
		return fmt.Errorf("update order %d: %w", orderID, err)
	}
	if opts.JSON {
		return opts.printJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "order #%d is now %s\n", orderID, next)
	return nil
}

func newAdminStatsCommand(opts *RootOptions) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the daily order aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := opts.client().Stats(cmd.Context(), day)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			if opts.JSON {
				return opts.printJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d orders, %s\n", stats.Date, stats.Orders, formatWon(int(stats.Revenue)))
			statuses := append(append([]domain.Status{}, domain.Progression...), domain.StatusCanceled)
			for _, st := range statuses {
				if n := stats.ByStatus[string(st)]; n > 0 {
					fmt.Fprintf(out, "  %-10s %d\n", st, n)
				}
			}
			for i, m := range stats.TopMenus {
				fmt.Fprintf(out, "  #%d menu %d x%.0f\n", i+1, m.MenuID, m.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", time.Now().UTC().Format(events.DayLayout), "day in YYYY-MM-DD (UTC)")

	return cmd
}
