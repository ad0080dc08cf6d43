package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/journal"
	"github.com/Tiliavir/heatlog/internal/logger"
	"github.com/Tiliavir/heatlog/internal/render"
)

var (
	dayStyle   string
	dayWidth   int
	dayRefresh bool
)

var dayCmd = &cobra.Command{
	Use:   "day <date>",
	Short: "Show one day's entry and its markdown notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDay,
}

func init() {
	dayCmd.Flags().StringVar(&dayStyle, "style", "auto", "Markdown style: auto, dark, light, notty")
	dayCmd.Flags().IntVar(&dayWidth, "width", journal.DefaultWidth, "Word-wrap width")
	dayCmd.Flags().BoolVar(&dayRefresh, "refresh", true, "Re-read the day from the backend when it supports single-day reads")
}

func runDay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, true, func(a *app) error {
		date, err := parseDateArg(args[0], a.now())
		if err != nil {
			return userError(err)
		}

		rec, ok := a.store.Get(date)
		if dayRefresh {
			fresh, found, err := a.store.Refresh(ctx, date)
			if err != nil {
				logger.Warn("refreshing day failed, showing local copy", "date", date, "error", err)
			} else {
				rec, ok = fresh, found
			}
		}

		if ok && rec.Active() {
			fmt.Println(render.Record(rec))
		} else {
			fmt.Printf("No entry for %s.\n", date)
		}

		body := rec.Content
		file, found, err := journal.NewSource(a.cfg.ContentBase).Fetch(ctx, date)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		if found {
			body = file
		}
		if body == "" {
			return nil
		}

		out, err := journal.Render(body, dayStyle, dayWidth)
		if err != nil {
			return userError(err)
		}
		fmt.Print(out)
		return nil
	})
}
