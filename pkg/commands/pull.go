package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/commands/options"
	"tableflip.dev/shiwake/pkg/printers"
	"tableflip.dev/shiwake/pkg/remote"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/syncer"
)

func addPull(topLevel *cobra.Command) {
	wo := &options.WeekOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "fetch a week from the server into the local cache",
		Long: "Fetch one week from the achievements service and overwrite the local cache. " +
			"A dirty cached week is refused unless --force is given.",
		Example: `
shiwake pull
shiwake pull --year 2025 --week 20
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			repo, err := store.Load(cfg)
			if err != nil {
				return err
			}

			key := wo.Key()
			c := cache.New(repo, "cli")
			if c.IsDirty(key) && !force {
				return fmt.Errorf("%s has unsaved local changes; push first or pass --force", key)
			}

			client := remote.NewClient(cfg.APIBase(), cfg.EmployeeID())
			s := syncer.New(client, c, cfg.WorkTimeDefaults())

			snap, stale, err := s.LoadWeek(context.Background(), key)
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			if stale {
				pp.Title("server unreachable; cached copy shown")
				pp.NewLine()
			}
			pp.Week(snap)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite unsaved local changes.")
	options.AddWeekArgs(cmd, wo)
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
