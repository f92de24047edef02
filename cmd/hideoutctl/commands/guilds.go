package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

func newGuildsCmd(flags *DatasetFlags) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:     "guilds <zone>",
		Short:   "List the guilds reported in a zone",
		GroupID: "datasets",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := parseServerFlag(server)
			if err != nil {
				return err
			}
			snap, err := flags.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, guild := range snap.Hideouts.ListGuildsByZone(strings.TrimSpace(args[0]), srv) {
				fmt.Fprintln(out, guild)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Filter by server: "+domain.ServerChoices())
	return cmd
}
