package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/heatlog/internal/credential"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend credential",
}

var authSetCmd = &cobra.Command{
	Use:   "set <credential>",
	Short: "Store the backend credential in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthSet,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored backend credential",
	Args:  cobra.NoArgs,
	RunE:  runAuthClear,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the backend credential comes from",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authClearCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), false, func(a *app) error {
		src, err := a.creds.Set(cmd.Context(), args[0])
		if err != nil {
			return storageError(err)
		}
		fmt.Printf("Credential stored in %s.\n", src)
		return nil
	})
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), false, func(a *app) error {
		if err := a.creds.Clear(cmd.Context()); err != nil {
			return storageError(err)
		}
		fmt.Println("Credential removed.")
		if cfg.Backend.Credential != "" {
			fmt.Println("Note: a credential is still set in the config file or HEATLOG_CREDENTIAL.")
		}
		return nil
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), false, func(a *app) error {
		fmt.Printf("Backend: %s\n", cfg.Backend.Kind)
		_, src, err := a.creds.Resolve(cmd.Context())
		switch {
		case errors.Is(err, credential.ErrNotFound):
			fmt.Println("Credential: not configured")
		case err != nil:
			return storageError(err)
		default:
			fmt.Printf("Credential: set (from %s)\n", src)
		}
		return nil
	})
}
