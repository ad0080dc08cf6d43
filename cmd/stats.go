package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/progress"
	"github.com/Tiliavir/heatlog/internal/render"
	"github.com/Tiliavir/heatlog/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print active days, current streak and this month's count",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Print progress through the configured goal interval",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

func runStats(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), true, func(a *app) error {
		snap := a.store.Snapshot()
		s := stats.Compute(snap, a.now())
		fmt.Printf("Active days:    %d\n", s.TotalActiveDays)
		fmt.Printf("Current streak: %d\n", s.CurrentStreak)
		fmt.Printf("Longest streak: %d\n", stats.LongestStreak(snap))
		fmt.Printf("This month:     %d\n", s.ThisMonthCount)
		return nil
	})
}

// runProgress does not need the records, so it skips loading them.
func runProgress(cmd *cobra.Command, args []string) error {
	loc, err := cfg.Location()
	if err != nil {
		return userError(err)
	}
	g, err := progress.ParseGoal(cfg.Goal.Start, cfg.Goal.End, loc)
	if err != nil {
		return userError(err)
	}

	p := progress.Compute(g, nowIn(loc))
	fmt.Printf("Goal:      %s → %s\n", cfg.Goal.Start, cfg.Goal.End)
	fmt.Printf("Progress:  %.1f%%\n", p.Percentage)
	fmt.Printf("Elapsed:   %d / %d days\n", p.ElapsedDays, p.TotalDays)
	fmt.Printf("Remaining: %d days\n", p.RemainingDays)
	fmt.Printf("Phase:     %d (%s)\n", p.Phase, render.PhaseLabel(p.Phase))
	return nil
}
