package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/doc82/bruce-messenger-fun/internal/config"
	"github.com/doc82/bruce-messenger-fun/internal/hub"
	"github.com/doc82/bruce-messenger-fun/internal/logging"
	"github.com/doc82/bruce-messenger-fun/internal/pubsub"
	"github.com/doc82/bruce-messenger-fun/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the messenger server",
	Run: func(cmd *cobra.Command, args []string) {
		logging.New()

		cfg, err := config.New()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}

		bus := pubsub.NewWatermillBus(cfg.BroadcastCapacity)
		defer bus.Close()

		h, err := hub.New(hub.Config{
			HeartbeatInterval: cfg.HeartbeatInterval,
			BroadcastCapacity: cfg.BroadcastCapacity,
			InboundQueueSize:  cfg.InboundQueueSize,
			MaxMessageBody:    cfg.MaxMessageBody,
			MaxPageSize:       cfg.MaxPageSize,
		}, bus)
		if err != nil {
			slog.Error("Failed to build hub", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Hub stopped fatally", "error", err)
				os.Exit(1)
			}
		}()

		slog.Info("Starting messenger server",
			"addr", cfg.Addr, "heartbeat_interval", cfg.HeartbeatInterval)
		server.New(cfg, h).Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
