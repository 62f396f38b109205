package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/cv-formatter/internal/config"
	"github.com/jonathan/cv-formatter/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: "Start an HTTP server that exposes /format, /format/pdf and /parse. The config file " +
		"is watched and strategy settings are applied to new requests without a restart.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	bootstrap := newLogger(os.Stderr, "info")
	manager, err := config.NewManager(configPath, bootstrap)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := *manager.Get()
	applyGlobalFlags(cmd, &cfg)
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	orch, err := buildOrchestrator(ctx, &cfg, logger, nil)
	if err != nil {
		return err
	}

	renderer := newRenderer(&cfg, logger)
	if !renderer.Available() {
		logger.Warn("chrome not found, /format/pdf will return 502")
	}

	srv, err := server.New(server.Options{
		Port:            cfg.Port,
		RenderTimeout:   cfg.RenderTimeout,
		LargeFontPoints: cfg.LargeFontPoints,
		Orchestrator:    orch,
		Renderer:        renderer,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Port and renderer settings need a restart; strategies do not
	manager.OnChange(func(next *config.Config) {
		rebuilt, err := buildOrchestrator(ctx, next, logger, nil)
		if err != nil {
			logger.Error("failed to apply config change", "error", err)
			return
		}
		srv.SetOrchestrator(rebuilt)
		logger.Info("applied config change", "strategies", rebuilt.Strategies())
	})
	manager.WatchConfig()

	return srv.Start(ctx)
}
