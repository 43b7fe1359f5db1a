package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsesync"
	"github.com/jpalmerr/pulsesync/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// tailCmd connects to the backend and streams live traffic to the terminal.
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Stream live push messages to the terminal",
	Long: `Connect to the configured push channels and stream traffic.

The client will:
  - Load configuration from the specified YAML file
  - Subscribe every configured topic, reconnecting on failure
  - Log each inbound message and every connection status change

The client runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  pulsesync tail -c config.yaml
  pulsesync tail --config /etc/pulsesync/config.yaml`,
	RunE: runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = tailCmd.MarkFlagRequired("config")
}

func runTail(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"server", cfg.ServerURL,
		"topics", cfg.Topics,
	)

	opts := config.BuildOptions(cfg)
	opts = append(opts,
		pulsesync.WithLogger(logger),
		pulsesync.WithStatusCallback(func(topic string, status pulsesync.Status) {
			logger.Info("channel status changed", "topic", topic, "status", status.String())
		}),
		pulsesync.WithMessageCallback(func(m pulsesync.Message) {
			logger.Info("message received",
				"topic", m.Topic,
				"type", m.Type,
				"timestamp", m.Timestamp,
				"data", m.Data,
			)
		}),
	)

	client, err := pulsesync.New(cfg.ServerURL, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start client - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- client.Start(ctx)
	}()

	// wait for client to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("client error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("client error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
