package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/config"
	"github.com/Tiliavir/heatlog/internal/logger"
)

var (
	configPath string
	debugLog   bool

	// cfg is loaded once in PersistentPreRunE.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "heatlog",
	Short: "heatlog – a yearly heatmap journal for the terminal",
	Long: `heatlog keeps one short journal entry per day, rates it 0-4 and draws
the year as a contribution-style heatmap with streaks and goal progress.
Records live in a remote spreadsheet or document store and are cached in ~/.heatlog/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.heatlog/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(authCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	loaded, err := config.Load(path)
	if err != nil {
		return userError(err)
	}
	cfg = loaded

	base, err := config.BaseDir()
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: debugLog, Dir: base}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("config loaded", "path", path, "backend", cfg.Backend.Kind, "cache", cfg.Cache.Driver)
	return nil
}
