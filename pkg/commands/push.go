package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/commands/options"
	"tableflip.dev/shiwake/pkg/printers"
	"tableflip.dev/shiwake/pkg/remote"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/syncer"
)

func addPush(topLevel *cobra.Command) {
	wo := &options.WeekOptions{}

	cmd := &cobra.Command{
		Use:   "push",
		Short: "save dirty weeks to the server",
		Long: "Push unsaved local changes to the achievements service. Without flags every " +
			"dirty week is pushed; with --year/--week only that week is.",
		Example: `
shiwake push
shiwake push --year 2025 --week 20
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
			client := remote.NewClient(cfg.APIBase(), cfg.EmployeeID())
			s := syncer.New(client, c, cfg.WorkTimeDefaults())
			ctx := context.Background()
			pp := printers.PrettyPrint{}

			if cmd.Flags().Changed("year") || cmd.Flags().Changed("week") {
				key := wo.Key()
				err := s.SaveWeek(ctx, key)
				pp.SaveResult(key, err)
				return err
			}

			dirty, err := c.DirtyWeeks()
			if err != nil {
				return err
			}
			if len(dirty) == 0 {
				pp.DirtyWeeks(nil)
				return nil
			}

			var failed error
			for _, key := range dirty {
				err := s.SaveWeek(ctx, key)
				pp.SaveResult(key, err)
				if err != nil {
					failed = err
				}
			}
			return failed
		},
	}

	options.AddWeekArgs(cmd, wo)
	topLevel.AddCommand(cmd)
}
