package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewMenusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menus",
		Short: "List the menu catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			menus, err := opts.client().Menus(cmd.Context())
			if err != nil {
				return fmt.Errorf("list menus: %w", err)
			}
			if opts.JSON {
				return opts.printJSON(cmd.OutOrStdout(), menus)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tOPTIONS\t")
			for _, m := range menus {
				name := m.Name
				if m.IsSoldOut {
					name += " (sold out)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t\n", m.ID, name, formatWon(m.Price), len(m.Options))
			}
			return tw.Flush()
		},
	}
}
