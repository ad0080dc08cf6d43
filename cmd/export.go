package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/model"
)

var (
	exportFormat string
	exportYear   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "Only export this year (default: everything)")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), true, func(a *app) error {
		prefix := ""
		if exportYear != 0 {
			prefix = fmt.Sprintf("%04d-", exportYear)
		}
		entries := filterRecords(a.store.Snapshot(), prefix, true)

		switch exportFormat {
		case "json":
			rs := make(model.Records, len(entries))
			for _, e := range entries {
				rs[e.Date] = e
			}
			data, err := model.EncodeRecords(rs)
			if err != nil {
				return storageError(fmt.Errorf("error encoding JSON: %w", err))
			}
			fmt.Println(string(data))
		case "md":
			fmt.Print(formatMarkdown(entries))
		case "csv":
			fmt.Print(formatCSV(entries))
		default:
			return userError(fmt.Errorf("unknown format %q: want csv, json or md", exportFormat))
		}
		return nil
	})
}

func formatCSV(entries []model.DayRecord) string {
	var b strings.Builder
	b.WriteString("date,title,level,content,updated_at\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s,%s,%d,%s,%s\n",
			csvEscape(e.Date),
			csvEscape(e.Title),
			e.Level,
			csvEscape(e.Content),
			csvEscape(e.UpdatedAt),
		)
	}
	return b.String()
}

// formatMarkdown writes one section per day with the content as its body.
func formatMarkdown(entries []model.DayRecord) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s · %s (level %d)\n", e.Date, e.Title, e.Level)
		if c := strings.TrimSpace(e.Content); c != "" {
			b.WriteString("\n" + c + "\n")
		}
	}
	return b.String()
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
