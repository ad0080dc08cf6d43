package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/model"
)

var (
	listMonth string
	listYear  int
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries (default: current month)",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listMonth, "month", "", "Month to list (YYYY-MM)")
	listCmd.Flags().IntVar(&listYear, "year", 0, "Year to list")
	listCmd.Flags().BoolVar(&listAll, "all", false, "List every entry, including level 0")
	listCmd.MarkFlagsMutuallyExclusive("month", "year")
}

func runList(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), true, func(a *app) error {
		prefix, err := listPrefix(listMonth, listYear, a.now().Format("2006-01"))
		if err != nil {
			return userError(err)
		}
		printList(filterRecords(a.store.Snapshot(), prefix, listAll))
		return nil
	})
}

// listPrefix turns the flags into a DateKey prefix.
func listPrefix(month string, year int, current string) (string, error) {
	switch {
	case month != "":
		if len(month) != 7 || month[4] != '-' {
			return "", fmt.Errorf("invalid --month value %q: want YYYY-MM", month)
		}
		if m, err := strconv.Atoi(month[5:]); err != nil || m < 1 || m > 12 {
			return "", fmt.Errorf("invalid --month value %q: want YYYY-MM", month)
		}
		return month + "-", nil
	case year != 0:
		return fmt.Sprintf("%04d-", year), nil
	default:
		return current + "-", nil
	}
}

// filterRecords returns the records whose key starts with prefix, in date
// order. Level-0 records are skipped unless all is set.
func filterRecords(rs model.Records, prefix string, all bool) []model.DayRecord {
	var out []model.DayRecord
	for _, key := range rs.SortedKeys() {
		r := rs[key]
		if !strings.HasPrefix(key, prefix) || (!all && !r.Active()) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// printList prints one line per record.
func printList(entries []model.DayRecord) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  [%d]  %s\n", e.Date, e.Level, e.Title)
	}
}
