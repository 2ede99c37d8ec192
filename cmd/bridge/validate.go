package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/trello-bridge/internal/model"
)

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check credentials, board, and guild reachability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := model.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			discordClient, trelloClient, err := buildClients()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			bot, err := discordClient.Me(ctx)
			if err != nil {
				return fmt.Errorf("discord: %w", err)
			}
			fmt.Printf("discord: ok (bot %s)\n", bot.Username)

			threads, err := discordClient.ActiveThreads(ctx, cfg.Discord.GuildID)
			if err != nil {
				return fmt.Errorf("discord guild %s: %w", cfg.Discord.GuildID, err)
			}
			fmt.Printf("guild %s: ok (%d active threads)\n", cfg.Discord.GuildID, len(threads))

			boardName, err := trelloClient.ValidateConnection(ctx, cfg.Trello.BoardID)
			if err != nil {
				return fmt.Errorf("trello: %w", err)
			}
			fmt.Printf("trello board %s: ok (%q)\n", cfg.Trello.BoardID, boardName)

			return nil
		},
	}
}
