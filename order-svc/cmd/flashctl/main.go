package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"flash-delivery/order-svc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flashctl:", err)
		os.Exit(1)
	}
}
