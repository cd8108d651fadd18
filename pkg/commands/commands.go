package commands

import (
	"github.com/spf13/cobra"
)

// New builds the shiwake root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shiwake",
		Short: "Weekly time allocation on the command line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

// AddCommands registers every subcommand on the root.
func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addWeek(topLevel)
	addPull(topLevel)
	addPush(topLevel)
	addMockAPI(topLevel)
	addVersion(topLevel)
}
