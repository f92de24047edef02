package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

func newHideoutsCmd(flags *DatasetFlags) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:     "hideouts [zone]",
		Short:   "Show reported hideouts of a zone or a server",
		GroupID: "datasets",
		Args:    cobra.MaximumNArgs(1),
		Long: `Show the reported hideouts of a zone, optionally filtered by server.
Without a zone, --server lists every hideout of that server.

Examples:
  hideoutctl hideouts AVALON-LIONEL-01
  hideoutctl hideouts AVALON-LIONEL-01 --server Europe
  hideoutctl hideouts --server America`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := parseServerFlag(server)
			if err != nil {
				return err
			}
			if len(args) == 0 && srv == nil {
				return errors.New("a zone or --server is required")
			}

			snap, err := flags.load()
			if err != nil {
				return err
			}

			var hideouts []*domain.Hideout
			if len(args) == 1 {
				hideouts = snap.Hideouts.ListByZone(strings.TrimSpace(args[0]), srv)
			} else {
				hideouts = snap.Hideouts.ListByServer(*srv)
			}

			out := cmd.OutOrStdout()
			if len(hideouts) == 0 {
				fmt.Fprintln(out, "No hideouts reported.")
				return nil
			}
			printHideouts(out, hideouts)
			fmt.Fprintf(out, "\nTotal hideouts: %d\n", len(hideouts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Filter by server: "+domain.ServerChoices())
	return cmd
}

func printHideouts(w io.Writer, hideouts []*domain.Hideout) {
	fmt.Fprintf(w, "%-24s %-28s %-8s %-11s %s\n", "Zone", "Guild", "Server", "Reported", "Notes")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, h := range hideouts {
		fmt.Fprintf(w, "%-24s %-28s %-8s %-11s %s\n",
			truncate(h.ZoneName, 24),
			truncate(h.GuildName, 28),
			h.Server,
			h.ReportedDate,
			h.Notes)
	}
}

// truncate shortens s to maxLen bytes with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
