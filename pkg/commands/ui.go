package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/remote"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/syncer"
	"tableflip.dev/shiwake/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the weekly grid editor",
		Example: `
shiwake ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			repo, err := store.Load(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client := remote.NewClient(cfg.APIBase(), cfg.EmployeeID())
			c := cache.New(repo, "ui")
			s := syncer.New(client, c, cfg.WorkTimeDefaults())

			// The project list is a nicety; the editor works without it.
			projects, _ := client.Projects(ctx)

			watch, err := repo.Watch(ctx)
			if err != nil {
				watch = nil
			}

			m := tui.New(ctx, c, s, cfg.EmployeeID(), projects, cfg.WorkTimeDefaults(), watch)
			return tui.Run(m)
		},
	}

	topLevel.AddCommand(cmd)
}
