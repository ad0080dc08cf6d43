package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/records"
	"github.com/Tiliavir/heatlog/internal/remote"
)

var (
	logTitle   string
	logLevel   int
	logContent string
	logFile    string
)

var logCmd = &cobra.Command{
	Use:   "log <date>",
	Short: "Write the entry for a day (date: YYYY-MM-DD, today or yesterday)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVarP(&logTitle, "title", "t", "", "Entry title (required)")
	logCmd.Flags().IntVarP(&logLevel, "level", "l", 1, "Intensity 0-4")
	logCmd.Flags().StringVarP(&logContent, "content", "c", "", "Markdown content")
	logCmd.Flags().StringVarP(&logFile, "file", "f", "", "Read markdown content from a file")
	logCmd.MarkFlagsMutuallyExclusive("content", "file")
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, true, func(a *app) error {
		date, err := parseDateArg(args[0], a.now())
		if err != nil {
			return userError(err)
		}

		content := logContent
		if logFile != "" {
			data, err := os.ReadFile(logFile)
			if err != nil {
				return userError(fmt.Errorf("reading %s: %w", logFile, err))
			}
			content = string(data)
		}

		saved, err := a.store.Save(ctx, model.DayRecord{
			Date:    date,
			Title:   logTitle,
			Level:   model.Level(logLevel),
			Content: content,
		})
		if err != nil {
			return saveFailure(err)
		}
		fmt.Printf("Saved %s: %q (level %d).\n", saved.Date, saved.Title, saved.Level)
		return nil
	})
}

// saveFailure turns a Store.Save error into the message and exit status
// shown to the user.
func saveFailure(err error) error {
	var saveErr *records.SaveError
	switch {
	case errors.Is(err, records.ErrValidation):
		return userError(err)
	case errors.Is(err, records.ErrCredentialMissing):
		return userError(errors.New("no backend credential configured: run `heatlog auth set <credential>` first"))
	case errors.As(err, &saveErr) && errors.Is(err, remote.ErrStaleVersion):
		return storageError(fmt.Errorf("save failed: the remote document changed meanwhile, run `heatlog sync` and try again: %w", err))
	default:
		return storageError(fmt.Errorf("save failed: %w", err))
	}
}
