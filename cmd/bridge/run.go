package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/trello-bridge/internal/aggregate"
	"github.com/nhle/trello-bridge/internal/attach"
	"github.com/nhle/trello-bridge/internal/bridge"
	"github.com/nhle/trello-bridge/internal/credential"
	"github.com/nhle/trello-bridge/internal/discord"
	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/internal/poll"
	"github.com/nhle/trello-bridge/internal/registry"
	"github.com/nhle/trello-bridge/internal/store"
	"github.com/nhle/trello-bridge/internal/trello"
)

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), *configPath)
		},
	}
}

// runDaemon wires everything together and blocks until interrupted.
func runDaemon(parent context.Context, configPath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := model.LoadConfig(configPath)
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

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bot, err := discordClient.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolving bot identity: %w", err)
	}
	logger.Info("connected to Discord", "bot", bot.Username)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := registry.New(db)
	if err := reg.Load(ctx); err != nil {
		return err
	}
	logger.Info("registry loaded", "mappings", reg.Len())

	agg := aggregate.New(discordClient)
	rec := attach.New(trelloClient, logger)
	orch := bridge.New(
		reg, trelloClient, discordClient, agg, rec,
		cfg.Trello.BoardID, cfg.Trello.ListID, logger,
	)

	// Bring every bound card up to date before watching for new
	// activity, so a restart heals descriptions that drifted while the
	// daemon was down.
	go func() {
		for _, m := range reg.Snapshot() {
			if ctx.Err() != nil {
				return
			}
			if err := orch.SyncThread(ctx, m.ThreadID); err != nil {
				logger.Error("startup sync failed",
					"thread_id", m.ThreadID, "error", err)
			}
		}
	}()

	poller := poll.New(trelloClient, discordClient, reg, poll.Options{
		BoardID:          cfg.Trello.BoardID,
		Notify:           cfg.Notify,
		Interval:         cfg.PollInterval(),
		Lookback:         cfg.Lookback(),
		BackoffThreshold: cfg.Poll.BackoffThreshold,
		DeliveryDelay:    cfg.DeliveryDelay(),
		Persist:          db,
	}, logger)
	poller.Seed(ctx)
	go poller.Run(ctx)
	defer poller.Stop()

	watcher := discord.NewWatcher(
		discordClient, cfg.Discord.GuildID, cfg.WatchInterval(),
		func(ctx context.Context, threadID string) {
			// One bad thread must never stop the watcher or block
			// other threads.
			if err := orch.SyncThread(ctx, threadID); err != nil {
				logger.Error("thread sync failed",
					"thread_id", threadID, "error", err)
			}
		},
		logger,
	)
	watcher.Start(ctx)
	defer watcher.Stop()

	logger.Info("bridge running",
		"board_id", cfg.Trello.BoardID,
		"guild_id", cfg.Discord.GuildID,
		"poll_interval", cfg.PollInterval())

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// buildClients constructs the remote clients from stored credentials.
func buildClients() (*discord.Client, *trello.Client, error) {
	discordToken, err := credential.Get(credential.KeyDiscordToken)
	if err != nil {
		return nil, nil, fmt.Errorf("discord token unavailable: %w", err)
	}
	trelloKey, err := credential.Get(credential.KeyTrelloAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("trello api key unavailable: %w", err)
	}
	trelloToken, err := credential.Get(credential.KeyTrelloToken)
	if err != nil {
		return nil, nil, fmt.Errorf("trello token unavailable: %w", err)
	}

	return discord.NewClient(discordToken), trello.NewClient(trelloKey, trelloToken), nil
}
