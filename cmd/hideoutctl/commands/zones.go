package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psykzz/avalon-hideout-mapper/internal/index"
)

func newZonesCmd(flags *DatasetFlags) *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "zones",
		Short:   "List tracked zones",
		GroupID: "datasets",
		Args:    cobra.NoArgs,
		Long: `List the tracked zone names, one per line.

Examples:
  # Every tracked zone
  hideoutctl zones

  # Autocomplete suggestions
  hideoutctl zones --query lionel --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := flags.load()
			if err != nil {
				return err
			}

			names := snap.Zones.ListZoneNames()
			if query != "" {
				names = snap.Zones.Suggest(query, limit)
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only zones containing this term (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "n", index.DefaultSuggestLimit, "Maximum number of suggestions")
	return cmd
}
