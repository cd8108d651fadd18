package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/commands/options"
	"tableflip.dev/shiwake/pkg/printers"
	"tableflip.dev/shiwake/pkg/store"
)

func addWeek(topLevel *cobra.Command) {
	wo := &options.WeekOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "week",
		Short: "print the cached week",
		Long:  "Print one week's events and work times from the local cache without touching the server.",
		Example: `
shiwake week
shiwake week --year 2025 --week 20
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			repo, err := store.Load(cfg)
			if err != nil {
				return err
			}

			c := cache.New(repo, "cli")
			snap, err := c.Week(wo.Key())
			if err != nil {
				return err
			}

			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Week(snap)
			return nil
		},
	}

	options.AddWeekArgs(cmd, wo)
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
