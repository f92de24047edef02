package commands

import (
	"github.com/spf13/cobra"

	"github.com/psykzz/avalon-hideout-mapper/internal/version"
)

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree, so tests can run it repeatedly.
func NewRootCmd() *cobra.Command {
	flags := &DatasetFlags{}

	root := &cobra.Command{
		Use:     "hideoutctl",
		Short:   "Query the Avalon hideout datasets and submit reports",
		Long:    `A command-line tool to browse the zone and hideout datasets offline and to report a hideout to a running hideouts service.`,
		Version: version.String(),

		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addDatasetFlags(root, flags)

	root.AddGroup(
		&cobra.Group{ID: "datasets", Title: "Dataset Commands:"},
		&cobra.Group{ID: "reports", Title: "Report Commands:"},
	)
	root.AddCommand(newZonesCmd(flags))
	root.AddCommand(newHideoutsCmd(flags))
	root.AddCommand(newGuildsCmd(flags))
	root.AddCommand(newReportCmd())

	return root
}
