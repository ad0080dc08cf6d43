package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/grid"
	"github.com/Tiliavir/heatlog/internal/progress"
	"github.com/Tiliavir/heatlog/internal/render"
	"github.com/Tiliavir/heatlog/internal/stats"
)

var showYear int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Draw the yearly heatmap with stats and goal progress",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVar(&showYear, "year", 0, "Year to draw (default: current year)")
}

func runShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), true, func(a *app) error {
		now := a.now()
		year := showYear
		if year == 0 {
			year = now.Year()
		}

		g, err := a.goal()
		if err != nil {
			return userError(err)
		}

		snap := a.store.Snapshot()
		fmt.Println(render.Heatmap(year, grid.Build(year, snap, now)))
		fmt.Println(render.Legend())
		fmt.Println()
		fmt.Println(render.Stats(stats.Compute(snap, now), stats.LongestStreak(snap)))
		fmt.Println(render.Progress(progress.Compute(g, now), g))
		return nil
	})
}
