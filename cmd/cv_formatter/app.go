package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jonathan/cv-formatter/internal/config"
	"github.com/jonathan/cv-formatter/internal/export"
	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/pipeline"
	"github.com/jonathan/cv-formatter/internal/rendering"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and environment, then applies --log-level
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyGlobalFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	if verbose && cfg.LogLevel != "debug" {
		cfg.LogLevel = "debug"
	}
}

// newLogger writes text logs at the configured level to w
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// buildOrchestrator wires heuristics, branding assets and the configured
// strategies into an orchestrator
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *slog.Logger, onProgress pipeline.ProgressCallback) (*pipeline.Orchestrator, error) {
	tables, err := heuristics.Load(cfg.HeuristicsFile)
	if err != nil {
		return nil, err
	}

	assets := rendering.LoadAssets(ctx, rendering.AssetOptions{Dir: cfg.AssetDir, Logger: logger})

	strategies, err := pipeline.BuildStrategies(cfg.Strategies, pipeline.StrategyOptions{
		Tables:          tables,
		Assets:          assets,
		TemplatePath:    cfg.TemplatePath,
		BrandText:       cfg.BrandText,
		MinVisibleChars: cfg.MinVisibleChars,
		MaxSkillTokens:  cfg.MaxSkillTokens,
	})
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(strategies, pipeline.Options{Logger: logger, OnProgress: onProgress})
}

func newRenderer(cfg *config.Config, logger *slog.Logger) *export.ChromeRenderer {
	return export.NewChromeRenderer(export.Options{
		ChromePath: cfg.ChromePath,
		Timeout:    cfg.RenderTimeout,
		Retries:    cfg.RenderRetries,
		Logger:     logger,
	})
}

// progressPrinter prints attempt events to stderr in verbose mode
func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", e.Step, e.Message)
	}
}

// writeOutput writes data to path, or to stdout when path is empty
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
