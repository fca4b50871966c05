package cli

import (
	"fmt"
	"os"

	"makazi/config"

	"github.com/spf13/cobra"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// NewRootCmd runs the server when no subcommand is given.
func NewRootCmd() *cobra.Command {
	serve := ServeCmd()
	rootCmd := &cobra.Command{
		Use:           "makazi",
		Short:         "Property listings and tour requests API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	rootCmd.Flags().AddFlagSet(serve.Flags())

	rootCmd.AddCommand(
		serve,
		MigrateCmd(),
		CreateAdminCmd(),
		RemindCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
