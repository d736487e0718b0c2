package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"flash-delivery/order-svc/internal/client"

	"github.com/spf13/cobra"
)

const (
	envAPIURL     = "FLASH_API_URL"
	envAdminToken = "FLASH_ADMIN_TOKEN"
	defaultAPIURL = "http://localhost:8000"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL string
	Token  string
	JSON   bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "flashctl",
		Short:         "Command line client for the flash-delivery order service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", envOr(envAPIURL, defaultAPIURL), "order service base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv(envAdminToken), "admin bearer token")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print raw JSON")

	cmd.AddCommand(NewMenusCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewTrackCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}

func (o *RootOptions) client() *client.Client {
	return client.New(o.APIURL, o.Token)
}

func (o *RootOptions) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func formatWon(amount int) string {
	s := fmt.Sprintf("%d", amount)
	neg := amount < 0
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out) + "원"
	}
	return string(out) + "원"
}
