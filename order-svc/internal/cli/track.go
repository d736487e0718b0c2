package cli

import (
	"errors"
	"fmt"
	"time"

	"flash-delivery/order-svc/internal/client"
	"flash-delivery/order-svc/internal/domain"
	"flash-delivery/order-svc/internal/tracker"

	"github.com/spf13/cobra"
)

// TrackOptions holds flags for the track command.
type TrackOptions struct {
	*RootOptions
	Interval time.Duration
}

func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "track <tracking-uuid>",
		Short: "Follow an order until it arrives or is canceled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(opts, cmd, args[0])
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", tracker.DefaultInterval, "poll interval")

	return cmd
}

func runTrack(opts *TrackOptions, cmd *cobra.Command, trackingID string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	t := tracker.New(opts.client())
	t.Interval = opts.Interval
	if t.MaxInterval < t.Interval {
		t.MaxInterval = t.Interval
	}

	var lastStatus domain.Status
	t.OnUpdate = func(order *domain.Order) {
		if opts.JSON {
			_ = opts.printJSON(out, order)
			return
		}
		if order.Status == lastStatus {
			return
		}
		lastStatus = order.Status
		line := fmt.Sprintf("[%s] order #%d %s", time.Now().Format("15:04:05"), order.ID, order.Status)
		if order.DeliveryETA != nil {
			line += fmt.Sprintf(" (eta %s)", order.DeliveryETA.Local().Format("15:04"))
		}
		fmt.Fprintln(out, line)
	}
	t.OnError = func(err error, failures int, next time.Duration) {
		fmt.Fprintf(errOut, "poll failed (%d/%d): %v, retrying in %s\n", failures, t.MaxFailures, err, next)
	}

	_, err := t.Run(cmd.Context(), trackingID)
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("no order with tracking id %s", trackingID)
	}
	return err
}
