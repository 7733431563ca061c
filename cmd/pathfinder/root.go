package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terra-clan/pathfinder/internal/config"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "pathfinder",
		Short:         "Learning path and career recommendation service",
		Long:          "pathfinder serves the learning-path catalog, career matches, captcha-gated demo login, profile editing and the canned chat assistant over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		// serve is the default command
		RunE: serve.RunE,
	}

	root.AddCommand(serve)
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newPathsCmd())
	return root
}

// loadConfig reads configuration and installs the JSON logger at the configured level
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		setupLogging(slog.LevelInfo)
		slog.Error("failed to load config", "error", err)
		return nil, err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	setupLogging(level)
	return cfg, nil
}

func setupLogging(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
