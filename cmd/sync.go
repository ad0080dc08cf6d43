package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/records"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reload records from the configured sources and refresh the cache",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), false, func(a *app) error {
		report := a.store.Load(cmd.Context())
		printReport(report)
		if report.Source == "" {
			fmt.Println("No source was usable; starting empty.")
			return nil
		}
		fmt.Printf("Loaded %d records from %s.\n", a.store.Len(), report.Source)
		return nil
	})
}

func printReport(report records.LoadReport) {
	for _, at := range report.Attempts {
		line := fmt.Sprintf("  %-12s %-6s", at.Source, at.Outcome)
		switch {
		case at.Err != nil:
			line += "  " + at.Err.Error()
		case at.Outcome == records.OutcomeData:
			line += fmt.Sprintf("  %d records", at.Count)
		}
		fmt.Println(line)
	}
}
