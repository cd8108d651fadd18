// Package options defines shared flag helpers for CLI commands.
package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/shiwake/pkg/store"
)

// WeekOptions selects the week a command operates on. Zero values mean the
// current ISO week.
type WeekOptions struct {
	Year int
	Week int
}

// AddWeekArgs wires the week selection flags on the provided command.
func AddWeekArgs(cmd *cobra.Command, o *WeekOptions) {
	cmd.Flags().IntVarP(&o.Year, "year", "y", 0,
		"ISO year. Defaults to the current week's year.")
	cmd.Flags().IntVarP(&o.Week, "week", "w", 0,
		"ISO week number. Defaults to the current week.")
}

// Key resolves the flags to a concrete week.
func (o *WeekOptions) Key() store.WeekKey {
	now := store.KeyFor(time.Now())
	key := store.WeekKey{Year: o.Year, Week: o.Week}
	if key.Year == 0 {
		key.Year = now.Year
	}
	if key.Week == 0 {
		key.Week = now.Week
	}
	return key
}

// IDOptions toggles id display on list output.
type IDOptions struct {
	ShowID bool
}

// AddShowIDArgs wires the id display flag on the provided command.
func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVar(&o.ShowID, "show-ids", false,
		"Show event ids in the output.")
}
