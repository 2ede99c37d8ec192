package main

import (
	"github.com/spf13/cobra"

	"github.com/nhle/trello-bridge/internal/model"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "bridge",
		Short:         "Keep Trello cards in sync with Discord threads",
		Long:          "bridge mirrors Discord threads into Trello cards and relays Trello changes back into the threads as notifications.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", model.DefaultConfigPath(),
		"path to the configuration file",
	)

	rootCmd.AddCommand(
		newRunCmd(&configPath),
		newValidateCmd(&configPath),
		newCredentialCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
